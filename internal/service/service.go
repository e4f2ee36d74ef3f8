// Package service orchestrates the scan and scrape flows over the collaborator adapters.
package service

import (
	"errors"

	"github.com/sirupsen/logrus"

	"dealscan/internal/metadata"
	"dealscan/internal/observability"
	"dealscan/internal/pricestore"
	"dealscan/internal/retailer"
)

// collaboratorFailed logs and counts a failed outbound call. Expected absences
// (unknown barcode, no search hit, unconfigured store) are logged at debug only.
func collaboratorFailed(log *logrus.Entry, collaborator string, err error) {
	entry := log.WithFields(logrus.Fields{"collaborator": collaborator, "error": err.Error()})

	if errors.Is(err, metadata.ErrNotFound) ||
		errors.Is(err, pricestore.ErrNotFound) ||
		errors.Is(err, pricestore.ErrDisabled) ||
		errors.Is(err, retailer.ErrNoResult) {
		entry.Debug("no data from collaborator")
		return
	}

	observability.CollaboratorErrorsTotal.WithLabelValues(collaborator).Inc()
	entry.Warn("collaborator call failed")
}
