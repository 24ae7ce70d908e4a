// Package store defines the dashboard's relational entities and the
// repository boundary the HTTP layer and report exporter depend on.
package store

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

type Project struct {
	ID                int64
	ProjectName       string
	ProjectType       string
	MemberFirm        string
	DeployedRegion    string
	IsActive          bool
	Description       string
	EngagementCode    string
	EngagementPartner string
	OpportunityCode   string
	EngagementManager string
	ProjectStartDate  *time.Time
	ProjectEndDate    *time.Time
}

type CreateProjectInput struct {
	ProjectName       string
	ProjectType       string
	MemberFirm        string
	DeployedRegion    string
	IsActive          bool
	Description       string
	EngagementCode    string
	EngagementPartner string
	OpportunityCode   string
	EngagementManager string
	ProjectStartDate  *time.Time
	ProjectEndDate    *time.Time
}

type UpdateProjectInput struct {
	ProjectName       *string
	ProjectType       *string
	MemberFirm        *string
	DeployedRegion    *string
	IsActive          *bool
	Description       *string
	EngagementManager *string
	ProjectEndDate    *time.Time
}

type ResourceGroup struct {
	ID                int64
	ResourceGroupName string
	ProjectID         int64
	Status            string
}

type CreateResourceGroupInput struct {
	ResourceGroupName string
	ProjectID         int64
	Status            string
}

type UpdateResourceGroupInput struct {
	ResourceGroupName *string
	Status            *string
}

type MonthlyCost struct {
	ProjectID       int64
	ResourceGroupID int64
	Month           time.Time
	Cost            decimal.Decimal
}

type UpsertMonthlyCostInput struct {
	ProjectID       int64
	ResourceGroupID int64
	Month           time.Time
	Cost            decimal.Decimal
}

// CostData is one raw per-service cost entry, the finest-grained cost
// record the dashboard ingests.
type CostData struct {
	ID              int64
	ProjectID       int64
	ResourceGroupID *int64
	CostDate        time.Time
	ServiceName     string
	Cost            decimal.Decimal
	Currency        string
}

type CreateCostDataInput struct {
	ProjectID       int64
	ResourceGroupID *int64
	CostDate        time.Time
	ServiceName     string
	Cost            decimal.Decimal
	Currency        string
}

type ProjectCostSummary struct {
	ProjectID             int64
	ResourceGroupID       int64
	TotalCostToDate       decimal.Decimal
	CostsPassedBackToDate decimal.Decimal
	GPTCostsToDate        decimal.Decimal
	GPTCostsPassedBack    decimal.Decimal
	Remarks               string
	UpdatedDate           time.Time
}

type UpsertProjectCostSummaryInput struct {
	ProjectID             int64
	ResourceGroupID       int64
	TotalCostToDate       decimal.Decimal
	CostsPassedBackToDate decimal.Decimal
	GPTCostsToDate        decimal.Decimal
	GPTCostsPassedBack    decimal.Decimal
	Remarks               string
}

type DashboardStats struct {
	TotalProjects  int64
	ActiveProjects int64
	TotalCost      decimal.Decimal
}

type CostTrend struct {
	Month     time.Time
	TotalCost decimal.Decimal
}

type RegionalCost struct {
	Region    string
	TotalCost decimal.Decimal
}

// CostReportRow is a denormalized monthly cost row used by the report
// exporter.
type CostReportRow struct {
	ProjectID         int64
	ProjectName       string
	DeployedRegion    string
	ResourceGroupID   int64
	ResourceGroupName string
	Month             time.Time
	Cost              decimal.Decimal
}
