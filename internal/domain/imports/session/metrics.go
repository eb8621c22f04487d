package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truckledger",
		Subsystem: "import",
		Name:      "files_rejected_total",
		Help:      "Uploads rejected before reaching a preview.",
	})
	recordsImported = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truckledger",
		Subsystem: "import",
		Name:      "records_imported_total",
		Help:      "Records successfully inserted at commit.",
	})
	recordsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "truckledger",
		Subsystem: "import",
		Name:      "records_failed_total",
		Help:      "Records rejected by the store at commit.",
	})
)
