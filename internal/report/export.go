// Package report encodes dashboard cost data as parquet files and
// uploads them to the object store for downstream analysis.
package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/cloudboard/cloudboard/internal/observability"
	"github.com/cloudboard/cloudboard/internal/storage"
	"github.com/cloudboard/cloudboard/internal/store"
)

// RowSource yields the denormalized monthly cost rows to export.
type RowSource interface {
	ListCostReportRows(ctx context.Context) ([]store.CostReportRow, error)
}

type ExportResult struct {
	ObjectKey   string
	RecordCount int64
	SizeBytes   int64
}

type Exporter struct {
	rows   RowSource
	store  storage.ObjectStore
	prefix string
	logger *slog.Logger
	clock  func() time.Time
}

func NewExporter(rows RowSource, objectStore storage.ObjectStore, prefix string, logger *slog.Logger) *Exporter {
	if prefix == "" {
		prefix = "cloudboard/reports"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		rows:   rows,
		store:  objectStore,
		prefix: prefix,
		logger: logger,
		clock:  time.Now,
	}
}

type parquetCostRow struct {
	ProjectID         int64  `parquet:"project_id"`
	ProjectName       string `parquet:"project_name"`
	DeployedRegion    string `parquet:"deployed_region"`
	ResourceGroupID   int64  `parquet:"resource_group_id"`
	ResourceGroupName string `parquet:"resource_group_name"`
	Month             string `parquet:"month"`
	Cost              string `parquet:"cost"`
}

// ExportMonthlyCosts writes every monthly cost row as one parquet
// object keyed by export date and a fresh UUID.
func (e *Exporter) ExportMonthlyCosts(ctx context.Context) (ExportResult, error) {
	rows, err := e.rows.ListCostReportRows(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("load cost report rows: %w", err)
	}
	if len(rows) == 0 {
		return ExportResult{}, fmt.Errorf("no cost rows to export")
	}

	encoded, err := encodeCostRows(rows)
	if err != nil {
		return ExportResult{}, err
	}

	objectKey, err := storage.BuildReportObjectKey(e.prefix, e.clock(), uuid.NewString())
	if err != nil {
		return ExportResult{}, fmt.Errorf("build report object key: %w", err)
	}

	putInfo, err := e.store.Put(ctx, objectKey, bytes.NewReader(encoded), int64(len(encoded)), storage.PutOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return ExportResult{}, fmt.Errorf("put parquet object: %w", err)
	}

	observability.IncrementReportExports()
	e.logger.Info("cost report exported", "object_key", objectKey, "rows", len(rows), "bytes", putInfo.Size)
	return ExportResult{
		ObjectKey:   objectKey,
		RecordCount: int64(len(rows)),
		SizeBytes:   putInfo.Size,
	}, nil
}

func encodeCostRows(rows []store.CostReportRow) ([]byte, error) {
	records := make([]parquetCostRow, 0, len(rows))
	for _, row := range rows {
		records = append(records, parquetCostRow{
			ProjectID:         row.ProjectID,
			ProjectName:       row.ProjectName,
			DeployedRegion:    row.DeployedRegion,
			ResourceGroupID:   row.ResourceGroupID,
			ResourceGroupName: row.ResourceGroupName,
			Month:             row.Month.Format("2006-01"),
			Cost:              row.Cost.String(),
		})
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[parquetCostRow](buf)
	if _, err := writer.Write(records); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
