// Command indexer is the batch ingestion CLI: it reads an articles JSON
// file, archives the articles when MySQL is up, and writes their chunk
// vectors into the collection. Running it again over the same file rewrites
// the same points.
package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"newsrag/internal/app"
	"newsrag/internal/bootstrap"
)

func main() {
	var articlesFile string
	flag.StringVar(&articlesFile, "articles", "", "path to articles JSON file (default: ingest.articles_file from config)")
	flag.Parse()

	ctx := context.Background()

	a, err := bootstrap.New(ctx)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.Warn("close resources failed", zap.Error(err))
		}
	}()

	if articlesFile == "" {
		articlesFile = a.Config.Ingest.ArticlesFile
	}

	articles, err := app.LoadArticlesFile(articlesFile)
	if err != nil {
		a.Logger.Fatal("load articles failed", zap.String("path", articlesFile), zap.Error(err))
	}
	if len(articles) == 0 {
		a.Logger.Fatal("articles file is empty", zap.String("path", articlesFile))
	}

	if a.Articles != nil {
		if err := a.Articles.UpsertBatch(articles); err != nil {
			a.Logger.Warn("archive articles failed", zap.Error(err))
		}
	}

	points, err := a.IndexService.IndexArticles(ctx, articles)
	if err != nil {
		a.Logger.Fatal("indexing failed", zap.Error(err))
	}

	a.Logger.Info("indexing complete",
		zap.String("path", articlesFile),
		zap.Int("articles", len(articles)),
		zap.Int("points", points),
	)
}
