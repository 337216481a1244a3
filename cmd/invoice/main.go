// Command invoice renders a PDF invoice from an exported bill record.
//
//	invoice --in bill.json [--out dir] [--timezone Asia/Kolkata]
//
// Branding flags fall back to the INVOICE_* environment variables.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/sangkips/agrishop-billing/pkg/invoice"
	"github.com/sangkips/agrishop-billing/pkg/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := run(os.Args[1:], os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, "invoice:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader) error {
	flags := pflag.NewFlagSet("invoice", pflag.ContinueOnError)
	flags.StringP("in", "i", "-", "bill record to render (JSON, - for stdin)")
	flags.StringP("out", "o", ".", "output directory, or a file path ending in .pdf")
	flags.String("timezone", "Asia/Kolkata", "time zone for printed dates")
	flags.String("company", "", "company name")
	flags.String("tagline", "", "company tagline")
	flags.String("contact", "", "contact line")
	flags.String("tax-id", "", "tax registration line")
	flags.String("currency", "", "currency symbol")
	if err := flags.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)
	for flag, env := range map[string]string{
		"company":  "INVOICE_COMPANY_NAME",
		"tagline":  "INVOICE_TAGLINE",
		"contact":  "INVOICE_CONTACT",
		"tax-id":   "INVOICE_TAX_ID",
		"currency": "INVOICE_CURRENCY",
		"timezone": "DB_TIMEZONE",
	} {
		_ = v.BindEnv(flag, env)
	}

	data, err := readInput(v.GetString("in"), stdin)
	if err != nil {
		return err
	}
	src, err := invoice.DecodeRecord(data)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}

	log := logger.Default().WithComponent("invoice")
	renderer := invoice.NewRenderer(invoice.Branding{
		CompanyName: v.GetString("company"),
		Tagline:     v.GetString("tagline"),
		Contact:     v.GetString("contact"),
		TaxID:       v.GetString("tax-id"),
		Currency:    v.GetString("currency"),
	}, invoice.WithLocation(loc), invoice.WithLogger(log))

	out, err := renderer.RenderPDF(src)
	if err != nil {
		return err
	}

	path := v.GetString("out")
	if filepath.Ext(path) != ".pdf" {
		path = filepath.Join(path, out.Filename)
	}
	if err := os.WriteFile(path, out.Content, 0o644); err != nil {
		return err
	}

	if out.Fallback != nil {
		log.Warnw("rendered fallback document", "error", out.Fallback)
	}
	log.Infow("invoice written", "path", path, "pages", out.Pages)
	return nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
