package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	articlesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minerva_articles_fetched_total",
		Help: "Articles fetched from RSS feeds.",
	})

	articlesNew = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minerva_articles_new_total",
		Help: "Articles new to a sink, by sink.",
	}, []string{"sink"})

	articlesDuplicate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minerva_articles_duplicate_total",
		Help: "Articles already present in a sink, by sink.",
	}, []string{"sink"})

	articlesExported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minerva_articles_exported_total",
		Help: "Articles written to markdown files.",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minerva_pipeline_runs_total",
		Help: "Pipeline runs by outcome.",
	}, []string{"status"})
)
