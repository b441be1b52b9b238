package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/infra/content"
	"storefront/internal/infra/db"
	"storefront/internal/infra/repository"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	feedURL   string
	dryRun    bool
	batchSize int
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "importer",
		Short: "Import products from a JSON feed into the content service",
		Long: `Fetches the product feed, validates every record and creates one
product document per record. Image files are not uploaded: the feed's
image URL is stored as the image reference.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			cs, err := config.LoadContent()
			if err != nil {
				return err
			}
			client, err := content.NewClient(content.Config{
				ProjectID:  cs.ProjectID,
				Dataset:    cs.Dataset,
				APIVersion: cs.APIVersion,
				Token:      cs.Token,
			})
			if err != nil {
				return err
			}

			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			var cache cacheInvalidator
			if cs.RedisURL != "" && !opts.dryRun {
				rdb, err := db.ConnectRedis(cmd.Context(), cs.RedisURL)
				if err != nil {
					logger.Warn("redis unavailable, product cache will expire on its own", zap.Error(err))
				} else {
					defer func() { _ = rdb.Close() }()
					cache = repository.NewProductRedisCache(rdb, 0)
				}
			}

			httpClient := &http.Client{Timeout: 30 * time.Second}
			res, err := runImport(cmd.Context(), httpClient, client, opts, cmd.OutOrStdout(), logger)
			if err != nil {
				return err
			}
			invalidateProducts(cmd.Context(), cache, res, opts, logger)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.feedURL, "feed-url", "", "URL of the JSON product feed")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "validate the feed without writing")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 50, "documents per mutation request")
	_ = cmd.MarkFlagRequired("feed-url")

	return cmd
}

type mutator interface {
	Mutate(ctx context.Context, mutations []content.Mutation) error
}

type importResult struct {
	Created int
	Skipped int
}

// runImport は不正なレコードを飛ばし、batchSize件ずつ作成する。
func runImport(ctx context.Context, httpClient *http.Client, m mutator, opts options, out io.Writer, logger *zap.Logger) (importResult, error) {
	if opts.batchSize < 1 {
		return importResult{}, fmt.Errorf("batch-size must be >= 1")
	}

	feed, err := content.FetchFeed(ctx, httpClient, opts.feedURL)
	if err != nil {
		return importResult{}, err
	}

	var (
		res   importResult
		batch []content.Mutation
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if !opts.dryRun {
			if err := m.Mutate(ctx, batch); err != nil {
				return fmt.Errorf("create products: %w", err)
			}
		}
		res.Created += len(batch)
		batch = nil
		return nil
	}

	for _, p := range feed {
		doc, err := p.ToDocument()
		if err != nil {
			logger.Warn("skipping feed product", zap.String("id", p.ID), zap.Error(err))
			res.Skipped++
			continue
		}
		batch = append(batch, content.Mutation{Create: doc})
		if len(batch) >= opts.batchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}

	verb := "imported"
	if opts.dryRun {
		verb = "validated"
	}
	fmt.Fprintf(out, "%s %d products, skipped %d\n", verb, res.Created, res.Skipped)
	return res, nil
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// 取り込んだ後はAPI側の商品一覧キャッシュを捨てる。失敗してもTTLで切れる
func invalidateProducts(ctx context.Context, c cacheInvalidator, res importResult, opts options, logger *zap.Logger) {
	if c == nil || opts.dryRun || res.Created == 0 {
		return
	}
	if err := c.Invalidate(ctx); err != nil {
		logger.Warn("product cache not invalidated", zap.Error(err))
	}
}
