package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docx2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the HTTP API")
	fmt.Fprintln(w, "  generate   Fill a template and write the PDF")
	fmt.Fprintln(w, "  bookmarks  List the bookmarks of a template")
	fmt.Fprintln(w, "  templates  List available templates")
	fmt.Fprintln(w, "  doctor     Check LibreOffice and directories")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docx2pdf help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -r, --content-root <dir>  Parent of templates/, output/ and images/")
	fmt.Fprintln(w, "  -q, --quiet               Only log errors")
	fmt.Fprintln(w, "  -v, --verbose             Log conversion job transitions")
	fmt.Fprintln(w, "      --log-format <s>      Log format: json, console")
}

func printRendererFlags(w io.Writer) {
	fmt.Fprintln(w, "Renderer:")
	fmt.Fprintln(w, "      --soffice <path>      LibreOffice binary (default: discovered)")
	fmt.Fprintln(w, "  -t, --timeout <d>         LibreOffice timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --strict              Fail on unknown bookmarks")
	fmt.Fprintln(w, "      --keep-artifacts      Keep filled DOCX and PDF in the output directory")
	fmt.Fprintln(w, "      --isolate-profile     One LibreOffice profile per worker")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docx2pdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP API until interrupted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  POST /api/document/generate-pdf   Fill a template and return the PDF")
	fmt.Fprintln(w, "  POST /api/document/bookmarks      List the bookmarks of a template")
	fmt.Fprintln(w, "  GET  /api/templates               List available templates")
	fmt.Fprintln(w, "  GET  /api/health                  Renderer and worker status")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :5000)")
	fmt.Fprintln(w, "  -w, --workers <n>         Concurrent conversions (0 = auto)")
	fmt.Fprintln(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	printRendererFlags(w)
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docx2pdf generate <template> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fill a template from the templates directory and write the PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Request:")
	fmt.Fprintln(w, "  -f, --request <file>      YAML or JSON request (templateName, variables,")
	fmt.Fprintln(w, "                            bookmarks, images); flags below win")
	fmt.Fprintln(w, "      --var <k=v>           Replace placeholder k with v (repeatable)")
	fmt.Fprintln(w, "      --bookmark <k=v>      Replace bookmark k with text v (repeatable)")
	fmt.Fprintln(w, "      --image <k=file>      Put image file at bookmark k (repeatable)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory (default: <template>.pdf)")
	fmt.Fprintln(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	printRendererFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example:")
	fmt.Fprintln(w, "  docx2pdf generate invoice.docx --var '{{Date}}=2024-01-15' --bookmark CustomerName=Acme")
}

// printBookmarksUsage prints usage for the bookmarks command.
func printBookmarksUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docx2pdf bookmarks <template | file.docx> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List bookmark names in document order, one per line.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printTemplatesUsage prints usage for the templates command.
func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docx2pdf templates [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List the .docx files in the templates directory.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docx2pdf doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check LibreOffice, content directories and the temp directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w, "      --soffice <path>      LibreOffice binary (default: discovered)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docx2pdf config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after applying the file, DOCX2PDF_* variables and flags.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "generate":
		printGenerateUsage(env.Stdout)
	case "bookmarks":
		printBookmarksUsage(env.Stdout)
	case "templates":
		printTemplatesUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: docx2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: docx2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
