// Package page hosts a headless document with bound forms.
//
// A Page owns the live document, its history and a single control loop.
// Change events, history writes made by the binder and every merge run on
// the loop; HTTP requests run on worker goroutines and post their results
// back through Dispatch. Responses that settle out of order are merged in
// the order they arrive, so the last one applied wins.
//
//	p, err := page.New(page.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	go p.Run(ctx)
//	if err := p.Load(ctx, "http://localhost:8080/search"); err != nil {
//		return err
//	}
//	p.Change(ctx, 0, formdata.Edit{Name: "q", Value: "foo"})
//	p.Wait(ctx)
//	fmt.Println(p.Location())
package page
