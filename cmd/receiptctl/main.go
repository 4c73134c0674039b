// Command receiptctl uploads receipt PDFs and manages them from a terminal.
// Usage: receiptctl [upload FILE...|list|get ID|delete ID|download-url FILE_ID|export]
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"receiptly/internal/config"
	"receiptly/internal/domain"
	"receiptly/internal/logger"
	"receiptly/internal/uploadclient"
	"receiptly/internal/view"
)

const usage = "Usage: receiptctl [upload FILE...|list|get ID|delete ID|download-url FILE_ID|export]"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func run(cmd string, args []string) error {
	cfg := config.LoadClient()

	flags := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	apiURL := flags.String("api-url", cfg.APIURL, "receipts API base URL")
	token := flags.String("token", cfg.Token, "identity token (RECEIPTLY_TOKEN)")
	sortField := flags.String("sort", string(domain.SortByUploadedAt), "list order: uploaded_at, name, size, amount or status")
	order := flags.String("order", "desc", "asc or desc")
	format := flags.String("format", string(domain.ExportCSV), "export format: csv or xlsx")
	out := flags.StringP("output", "o", "", "export destination (default stdout)")
	verbose := flags.BoolP("verbose", "v", false, "log requests")
	if err := flags.Parse(args); err != nil {
		return err
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	zlog, err := logger.New(level, "console")
	if err != nil {
		return err
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := uploadclient.New(*apiURL, *token, nil)
	sort := domain.ParseReceiptSort(*sortField, *order)

	switch cmd {
	case "upload":
		return upload(ctx, client, flags.Args(), cfg.ClearAfter, sort, zlog)
	case "list":
		return printList(ctx, client, sort, os.Stdout)
	case "get":
		id, err := idArg(flags.Args())
		if err != nil {
			return err
		}
		r, err := client.Get(ctx, id)
		if err != nil {
			return err
		}
		return view.RenderTable(os.Stdout, view.Build([]domain.Receipt{*r}, time.Local))
	case "delete":
		id, err := idArg(flags.Args())
		if err != nil {
			return err
		}
		if err := client.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Println("receipt deleted")
		return nil
	case "download-url":
		id, err := idArg(flags.Args())
		if err != nil {
			return err
		}
		u, err := client.DownloadURL(ctx, id)
		if err != nil {
			return err
		}
		fmt.Println(u)
		return nil
	case "export":
		var w io.Writer = os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", *out, err)
			}
			defer func() { _ = f.Close() }()
			w = f
		}
		return client.Export(ctx, domain.ExportFormat(*format), w)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func upload(ctx context.Context, client *uploadclient.Client, paths []string, clearAfter time.Duration, sort domain.ReceiptSort, zlog *zap.Logger) error {
	files := make([]uploadclient.File, 0, len(paths))
	for _, p := range paths {
		files = append(files, uploadclient.FromPath(p))
	}

	nav := &listNavigator{client: client, sort: sort, w: os.Stdout}
	u := uploadclient.NewUploader(client, nav, clearAfter, zlog)
	defer u.Close()

	results, err := u.Submit(ctx, files)
	for i, r := range results {
		fmt.Fprintf(os.Stderr, "uploaded %s as %s\n", files[i].Name, r.ReceiptID)
	}
	return err
}

// listNavigator renders the receipts list in place of a page change.
type listNavigator struct {
	client *uploadclient.Client
	sort   domain.ReceiptSort
	w      io.Writer
}

func (n *listNavigator) Navigate(ctx context.Context, _ string) error {
	return printList(ctx, n.client, n.sort, n.w)
}

func printList(ctx context.Context, client *uploadclient.Client, sort domain.ReceiptSort, w io.Writer) error {
	receipts, err := client.List(ctx, sort)
	if err != nil {
		return err
	}
	return view.RenderTable(w, view.Build(receipts, time.Local))
}

func idArg(args []string) (uuid.UUID, error) {
	if len(args) != 1 {
		return uuid.Nil, fmt.Errorf("expected exactly one ID\n%s", usage)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid ID %q: %w", args[0], err)
	}
	return id, nil
}
