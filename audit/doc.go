// Package audit classifies domains by the presence of the SPF and DMARC
// email-authentication DNS records.
//
// SPF (RFC 7208) is published as a TXT record on the domain itself, starting
// with "v=spf1". DMARC (RFC 7489) is published as a TXT record under
// "_dmarc.<domain>", starting with "v=DMARC1". This package detects record
// presence only; it does not evaluate SPF mechanisms or DMARC policy terms.
//
// The Classifier resolves both records for a domain and yields a Report with
// one of three statuses per record: present, absent, or unresolvable. All
// resolution failures are represented as status values, never as errors, so
// a batch over many domains keeps going when individual domains are dead or
// misconfigured.
//
// Classifying a single domain:
//
//	classifier := audit.NewClassifier(audit.ClassifierConfig{
//	    Resolver: dns.NewResolver(dns.ResolverConfig{}),
//	})
//
//	report := classifier.Classify(ctx, "example.com")
//	if report.SPF.Status == audit.StatusPresent {
//	    fmt.Println(report.SPF.Record)
//	}
//
// Running a batch with statistics:
//
//	stats := audit.NewStats()
//	runner := audit.NewRunner(audit.RunnerConfig{
//	    Classifier: classifier,
//	    Stats:      stats,
//	})
//	if err := runner.Run(ctx, domains); err != nil {
//	    // context cancelled or a sink failed
//	}
//	fmt.Print(stats.Summary())
package audit
