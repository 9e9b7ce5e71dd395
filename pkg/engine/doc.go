// Package engine orchestrates the UI schema lifecycle: it validates candidate
// documents, applies evolution operations, commits results into a bounded
// version history and notifies subscribers.
//
// A minimal setup:
//
//	eng, err := engine.New(registry.NewDefault(), engine.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	unsubscribe := eng.Subscribe(func(doc schema.Document) error {
//		return render(doc)
//	})
//	defer unsubscribe()
//
//	doc, err := eng.ProcessCandidate(ctx, modelOutput)
package engine
