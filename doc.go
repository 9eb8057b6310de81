// Package menupdf exports weekly menus to paginated PDF using headless Chrome.
//
// # Quick Start
//
// Create an exporter, export a document, and close when done:
//
//	exp, err := menupdf.NewExporter(menupdf.WithOutputDir("menus"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exp.Close()
//
//	res, err := exp.Export(ctx, menupdf.MenuDocument{
//	    Title:     "Cardápio da semana",
//	    DateRange: "05/11-11/11",
//	    Data:      payload, // {"dias": [...], "shoppingList": [...], "assumptions": [...]}
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Path) // menus/Cardapio_da_semana_0511-1111.pdf
//
// # Export Paths
//
// ModeNative (default) prints the document through Chrome's print engine,
// honouring its @page rule. ModeRaster mounts the document in a fixed-width
// container, captures it as one tall image at 2x, cuts the image at page
// boundaries that avoid splitting day cards, and assembles one full-bleed
// page per slice:
//
//	exp, err := menupdf.NewExporter(
//	    menupdf.WithMode(menupdf.ModeRaster),
//	    menupdf.WithPage(menupdf.PageSettings{Size: "a4", Orientation: "portrait", Margin: 20}),
//	)
//
// # Input
//
// Payloads are read leniently: days come from "dias" or "menu.dias", and
// missing or mistyped fields render as empty instead of failing. Chat
// replies carrying a <MENU>{...}</MENU> block are converted with
// ParseChatReply.
//
// # Delivery
//
// Rasterized PDFs go to a Sink (DirSink by default). A Sharer runs after
// every export; OpenSharer and MailSharer open the file locally or send it
// by email. A failing sharer does not lose the PDF: Export returns the
// result together with an error wrapping ErrShare.
//
// # Parallel Processing
//
// For batch exports, use ExporterPool to manage multiple browser instances:
//
//	pool := menupdf.NewExporterPool(menupdf.ResolvePoolSize(0), opts...)
//	defer pool.Close()
//
//	exp, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(exp)
package menupdf
