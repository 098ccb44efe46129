package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResolvesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubegrab_resolves_total",
		Help: "Total number of metadata resolution attempts",
	})

	ResolvesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubegrab_resolves_failed_total",
		Help: "Total number of failed metadata resolutions",
	})

	DownloadsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubegrab_downloads_started_total",
		Help: "Total number of download sessions started",
	})

	DownloadsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubegrab_downloads_completed_total",
		Help: "Total number of download sessions completed successfully",
	})

	DownloadsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubegrab_downloads_failed_total",
		Help: "Total number of failed download sessions",
	})

	DownloadsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubegrab_downloads_rejected_total",
		Help: "Total number of start requests rejected by the single-flight guard",
	})

	DownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tubegrab_download_duration_seconds",
		Help:    "Download duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	DownloadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubegrab_download_bytes_total",
		Help: "Total bytes downloaded",
	})
)
