// Package docx2pdf fills DOCX templates and renders them to PDF with a
// headless LibreOffice process.
//
// # Quick Start
//
// Create a converter, generate a PDF from a template, and close when done:
//
//	conv, err := docx2pdf.NewConverter(docx2pdf.WithContentRoot("/srv/docs"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Generate(ctx, docx2pdf.Request{
//	    TemplateName: "invoice.docx",
//	    Variables:    map[string]string{"{{Date}}": "2024-01-01"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Filename, result.PDF, 0644)
//
// # Generation Pipeline
//
// Generate runs these stages for every request:
//
//  1. Resolve the template inside {contentRoot}/templates
//  2. Copy it to {contentRoot}/output/<uuid>.docx
//  3. Substitute variables in body, headers and footers
//  4. Replace bookmark content with text, then with images
//  5. Save the working copy once
//  6. Render it with soffice --headless --convert-to pdf
//  7. Read the PDF and remove the working files
//
// Variables are literal substrings: "{{Date}}" matches wherever those exact
// characters sit inside a single text run. A placeholder split across runs by
// the editor is not matched.
//
// # Editing Without Rendering
//
// ReplaceVariables, ReplaceBookmarks, ReplaceImage and Bookmarks edit or
// inspect a DOCX file in place. Each call opens the file, applies its change
// and saves once, so a failure leaves the file untouched.
//
// # Parallel Processing
//
// Each conversion starts its own soffice process. ConverterPool bounds how
// many run at once; with WithIsolatedProfile every pooled converter gets its
// own LibreOffice profile so concurrent processes do not contend for a lock:
//
//	pool := docx2pdf.NewConverterPool(4, docx2pdf.WithIsolatedProfile())
//	defer pool.Close()
//
//	conv, err := pool.AcquireContext(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Renderer Requirements
//
// LibreOffice must be installed. The binary is looked up in the platform's
// usual install locations; set DOCX2PDF_SOFFICE or use WithRendererPath to
// point at another one.
package docx2pdf
