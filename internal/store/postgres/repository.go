package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudboard/cloudboard/internal/store"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping dashboard db: %w", err)
	}
	return nil
}

func (r *Repository) CreateProject(ctx context.Context, in store.CreateProjectInput) (store.Project, error) {
	query := `
INSERT INTO project (project_name, project_type, member_firm, deployed_region, is_active, description, engagement_code, engagement_partner, opportunity_code, engagement_manager, project_startdate, project_enddate)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id`

	project := store.Project{
		ProjectName:       in.ProjectName,
		ProjectType:       in.ProjectType,
		MemberFirm:        in.MemberFirm,
		DeployedRegion:    in.DeployedRegion,
		IsActive:          in.IsActive,
		Description:       in.Description,
		EngagementCode:    in.EngagementCode,
		EngagementPartner: in.EngagementPartner,
		OpportunityCode:   in.OpportunityCode,
		EngagementManager: in.EngagementManager,
		ProjectStartDate:  in.ProjectStartDate,
		ProjectEndDate:    in.ProjectEndDate,
	}
	if err := r.db.QueryRowContext(ctx, query,
		in.ProjectName, in.ProjectType, in.MemberFirm, in.DeployedRegion, in.IsActive,
		in.Description, in.EngagementCode, in.EngagementPartner, in.OpportunityCode,
		in.EngagementManager, in.ProjectStartDate, in.ProjectEndDate,
	).Scan(&project.ID); err != nil {
		return store.Project{}, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (r *Repository) GetProject(ctx context.Context, projectID int64) (store.Project, error) {
	query := `
SELECT id, project_name, project_type, member_firm, deployed_region, is_active, description, engagement_code, engagement_partner, opportunity_code, engagement_manager, project_startdate, project_enddate
FROM project
WHERE id = $1`

	var project store.Project
	if err := r.db.QueryRowContext(ctx, query, projectID).Scan(
		&project.ID,
		&project.ProjectName,
		&project.ProjectType,
		&project.MemberFirm,
		&project.DeployedRegion,
		&project.IsActive,
		&project.Description,
		&project.EngagementCode,
		&project.EngagementPartner,
		&project.OpportunityCode,
		&project.EngagementManager,
		&project.ProjectStartDate,
		&project.ProjectEndDate,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Project{}, store.ErrNotFound
		}
		return store.Project{}, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

func (r *Repository) ListProjects(ctx context.Context, limit, offset int) ([]store.Project, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, project_name, project_type, member_firm, deployed_region, is_active, description, engagement_code, engagement_partner, opportunity_code, engagement_manager, project_startdate, project_enddate
FROM project
ORDER BY id ASC
LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	projects := make([]store.Project, 0)
	for rows.Next() {
		var project store.Project
		if err := rows.Scan(
			&project.ID,
			&project.ProjectName,
			&project.ProjectType,
			&project.MemberFirm,
			&project.DeployedRegion,
			&project.IsActive,
			&project.Description,
			&project.EngagementCode,
			&project.EngagementPartner,
			&project.OpportunityCode,
			&project.EngagementManager,
			&project.ProjectStartDate,
			&project.ProjectEndDate,
		); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project rows: %w", err)
	}
	return projects, nil
}

func (r *Repository) UpdateProject(ctx context.Context, projectID int64, in store.UpdateProjectInput) (store.Project, error) {
	assignments := make([]string, 0, 8)
	args := make([]any, 0, 9)
	appendSet := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if in.ProjectName != nil {
		appendSet("project_name", *in.ProjectName)
	}
	if in.ProjectType != nil {
		appendSet("project_type", *in.ProjectType)
	}
	if in.MemberFirm != nil {
		appendSet("member_firm", *in.MemberFirm)
	}
	if in.DeployedRegion != nil {
		appendSet("deployed_region", *in.DeployedRegion)
	}
	if in.IsActive != nil {
		appendSet("is_active", *in.IsActive)
	}
	if in.Description != nil {
		appendSet("description", *in.Description)
	}
	if in.EngagementManager != nil {
		appendSet("engagement_manager", *in.EngagementManager)
	}
	if in.ProjectEndDate != nil {
		appendSet("project_enddate", *in.ProjectEndDate)
	}
	if len(assignments) == 0 {
		return r.GetProject(ctx, projectID)
	}

	args = append(args, projectID)
	query := fmt.Sprintf(`
UPDATE project
SET %s
WHERE id = $%d`, strings.Join(assignments, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return store.Project{}, fmt.Errorf("update project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return store.Project{}, fmt.Errorf("update project rows affected: %w", err)
	}
	if affected == 0 {
		return store.Project{}, store.ErrNotFound
	}
	return r.GetProject(ctx, projectID)
}

func (r *Repository) DeleteProject(ctx context.Context, projectID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM project WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) CreateResourceGroup(ctx context.Context, in store.CreateResourceGroupInput) (store.ResourceGroup, error) {
	status := in.Status
	if status == "" {
		status = "active"
	}

	query := `
INSERT INTO resource_group (resource_group_name, project_id, status)
VALUES ($1, $2, $3)
RETURNING id`

	group := store.ResourceGroup{
		ResourceGroupName: in.ResourceGroupName,
		ProjectID:         in.ProjectID,
		Status:            status,
	}
	if err := r.db.QueryRowContext(ctx, query, in.ResourceGroupName, in.ProjectID, status).Scan(&group.ID); err != nil {
		return store.ResourceGroup{}, fmt.Errorf("create resource group: %w", err)
	}
	return group, nil
}

func (r *Repository) GetResourceGroup(ctx context.Context, resourceGroupID int64) (store.ResourceGroup, error) {
	query := `
SELECT id, resource_group_name, project_id, status
FROM resource_group
WHERE id = $1`

	var group store.ResourceGroup
	if err := r.db.QueryRowContext(ctx, query, resourceGroupID).Scan(
		&group.ID,
		&group.ResourceGroupName,
		&group.ProjectID,
		&group.Status,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ResourceGroup{}, store.ErrNotFound
		}
		return store.ResourceGroup{}, fmt.Errorf("get resource group: %w", err)
	}
	return group, nil
}

func (r *Repository) ListResourceGroups(ctx context.Context, projectID int64, limit, offset int) ([]store.ResourceGroup, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
SELECT id, resource_group_name, project_id, status
FROM resource_group`
	args := []any{}
	if projectID > 0 {
		query += `
WHERE project_id = $1`
		args = append(args, projectID)
	}
	query += fmt.Sprintf(`
ORDER BY id ASC
LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list resource groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	groups := make([]store.ResourceGroup, 0)
	for rows.Next() {
		var group store.ResourceGroup
		if err := rows.Scan(&group.ID, &group.ResourceGroupName, &group.ProjectID, &group.Status); err != nil {
			return nil, fmt.Errorf("scan resource group row: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resource group rows: %w", err)
	}
	return groups, nil
}

func (r *Repository) UpdateResourceGroup(ctx context.Context, resourceGroupID int64, in store.UpdateResourceGroupInput) (store.ResourceGroup, error) {
	assignments := make([]string, 0, 2)
	args := make([]any, 0, 3)
	appendSet := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if in.ResourceGroupName != nil {
		appendSet("resource_group_name", *in.ResourceGroupName)
	}
	if in.Status != nil {
		appendSet("status", *in.Status)
	}
	if len(assignments) == 0 {
		return r.GetResourceGroup(ctx, resourceGroupID)
	}

	args = append(args, resourceGroupID)
	query := fmt.Sprintf(`
UPDATE resource_group
SET %s
WHERE id = $%d`, strings.Join(assignments, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return store.ResourceGroup{}, fmt.Errorf("update resource group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return store.ResourceGroup{}, fmt.Errorf("update resource group rows affected: %w", err)
	}
	if affected == 0 {
		return store.ResourceGroup{}, store.ErrNotFound
	}
	return r.GetResourceGroup(ctx, resourceGroupID)
}

func (r *Repository) DeleteResourceGroup(ctx context.Context, resourceGroupID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resource_group WHERE id = $1`, resourceGroupID)
	if err != nil {
		return fmt.Errorf("delete resource group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete resource group rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) UpsertMonthlyCost(ctx context.Context, in store.UpsertMonthlyCostInput) (store.MonthlyCost, error) {
	query := `
INSERT INTO monthly_cost (project_id, resource_group_id, month, cost)
VALUES ($1, $2, $3, $4)
ON CONFLICT (project_id, resource_group_id, month)
DO UPDATE SET cost = EXCLUDED.cost
RETURNING project_id, resource_group_id, month, cost`

	var cost store.MonthlyCost
	if err := r.db.QueryRowContext(ctx, query, in.ProjectID, in.ResourceGroupID, in.Month, in.Cost).Scan(
		&cost.ProjectID,
		&cost.ResourceGroupID,
		&cost.Month,
		&cost.Cost,
	); err != nil {
		return store.MonthlyCost{}, fmt.Errorf("upsert monthly cost: %w", err)
	}
	return cost, nil
}

func (r *Repository) ListMonthlyCosts(ctx context.Context, projectID int64) ([]store.MonthlyCost, error) {
	query := `
SELECT project_id, resource_group_id, month, cost
FROM monthly_cost`
	args := []any{}
	if projectID > 0 {
		query += `
WHERE project_id = $1`
		args = append(args, projectID)
	}
	query += `
ORDER BY month ASC, resource_group_id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list monthly costs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	costs := make([]store.MonthlyCost, 0)
	for rows.Next() {
		var cost store.MonthlyCost
		if err := rows.Scan(&cost.ProjectID, &cost.ResourceGroupID, &cost.Month, &cost.Cost); err != nil {
			return nil, fmt.Errorf("scan monthly cost row: %w", err)
		}
		costs = append(costs, cost)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly cost rows: %w", err)
	}
	return costs, nil
}

func (r *Repository) CreateCostData(ctx context.Context, in store.CreateCostDataInput) (store.CostData, error) {
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	query := `
INSERT INTO cost_data (project_id, resource_group_id, cost_date, service_name, cost, currency)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`

	entry := store.CostData{
		ProjectID:       in.ProjectID,
		ResourceGroupID: in.ResourceGroupID,
		CostDate:        in.CostDate,
		ServiceName:     in.ServiceName,
		Cost:            in.Cost,
		Currency:        currency,
	}
	if err := r.db.QueryRowContext(ctx, query, in.ProjectID, in.ResourceGroupID, in.CostDate, in.ServiceName, in.Cost, currency).Scan(&entry.ID); err != nil {
		return store.CostData{}, fmt.Errorf("create cost data: %w", err)
	}
	return entry, nil
}

func (r *Repository) ListCostData(ctx context.Context, projectID int64) ([]store.CostData, error) {
	query := `
SELECT id, project_id, resource_group_id, cost_date, service_name, cost, currency
FROM cost_data`
	args := []any{}
	if projectID > 0 {
		query += `
WHERE project_id = $1`
		args = append(args, projectID)
	}
	query += `
ORDER BY cost_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cost data: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]store.CostData, 0)
	for rows.Next() {
		var entry store.CostData
		if err := rows.Scan(&entry.ID, &entry.ProjectID, &entry.ResourceGroupID, &entry.CostDate, &entry.ServiceName, &entry.Cost, &entry.Currency); err != nil {
			return nil, fmt.Errorf("scan cost data row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost data rows: %w", err)
	}
	return entries, nil
}

func (r *Repository) UpsertProjectCostSummary(ctx context.Context, in store.UpsertProjectCostSummaryInput) (store.ProjectCostSummary, error) {
	query := `
INSERT INTO project_cost_summary (project_id, resource_group_id, total_cost_to_date, costs_passed_back_to_date, gpt_costs_to_date, gpt_costs_passed_back_to_date, remarks, updated_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (project_id, resource_group_id)
DO UPDATE SET
	total_cost_to_date = EXCLUDED.total_cost_to_date,
	costs_passed_back_to_date = EXCLUDED.costs_passed_back_to_date,
	gpt_costs_to_date = EXCLUDED.gpt_costs_to_date,
	gpt_costs_passed_back_to_date = EXCLUDED.gpt_costs_passed_back_to_date,
	remarks = EXCLUDED.remarks,
	updated_date = NOW()
RETURNING updated_date`

	summary := store.ProjectCostSummary{
		ProjectID:             in.ProjectID,
		ResourceGroupID:       in.ResourceGroupID,
		TotalCostToDate:       in.TotalCostToDate,
		CostsPassedBackToDate: in.CostsPassedBackToDate,
		GPTCostsToDate:        in.GPTCostsToDate,
		GPTCostsPassedBack:    in.GPTCostsPassedBack,
		Remarks:               in.Remarks,
	}
	if err := r.db.QueryRowContext(ctx, query,
		in.ProjectID, in.ResourceGroupID, in.TotalCostToDate, in.CostsPassedBackToDate,
		in.GPTCostsToDate, in.GPTCostsPassedBack, in.Remarks,
	).Scan(&summary.UpdatedDate); err != nil {
		return store.ProjectCostSummary{}, fmt.Errorf("upsert project cost summary: %w", err)
	}
	return summary, nil
}

func (r *Repository) ListProjectCostSummaries(ctx context.Context, projectID int64) ([]store.ProjectCostSummary, error) {
	query := `
SELECT project_id, resource_group_id, total_cost_to_date, costs_passed_back_to_date, gpt_costs_to_date, gpt_costs_passed_back_to_date, remarks, updated_date
FROM project_cost_summary`
	args := []any{}
	if projectID > 0 {
		query += `
WHERE project_id = $1`
		args = append(args, projectID)
	}
	query += `
ORDER BY project_id ASC, resource_group_id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list project cost summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]store.ProjectCostSummary, 0)
	for rows.Next() {
		var summary store.ProjectCostSummary
		if err := rows.Scan(
			&summary.ProjectID,
			&summary.ResourceGroupID,
			&summary.TotalCostToDate,
			&summary.CostsPassedBackToDate,
			&summary.GPTCostsToDate,
			&summary.GPTCostsPassedBack,
			&summary.Remarks,
			&summary.UpdatedDate,
		); err != nil {
			return nil, fmt.Errorf("scan project cost summary row: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project cost summary rows: %w", err)
	}
	return summaries, nil
}

func (r *Repository) GetDashboardStats(ctx context.Context) (store.DashboardStats, error) {
	query := `
SELECT
	(SELECT COUNT(id) FROM project),
	(SELECT COUNT(id) FROM project WHERE is_active = TRUE),
	(SELECT COALESCE(SUM(total_cost_to_date), 0) FROM project_cost_summary)`

	var stats store.DashboardStats
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.TotalProjects, &stats.ActiveProjects, &stats.TotalCost); err != nil {
		return store.DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

func (r *Repository) GetCostTrends(ctx context.Context) ([]store.CostTrend, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT month, COALESCE(SUM(cost), 0) AS total_cost
FROM monthly_cost
GROUP BY month
ORDER BY month ASC`)
	if err != nil {
		return nil, fmt.Errorf("cost trends: %w", err)
	}
	defer func() { _ = rows.Close() }()

	trends := make([]store.CostTrend, 0)
	for rows.Next() {
		var trend store.CostTrend
		if err := rows.Scan(&trend.Month, &trend.TotalCost); err != nil {
			return nil, fmt.Errorf("scan cost trend row: %w", err)
		}
		trends = append(trends, trend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost trend rows: %w", err)
	}
	return trends, nil
}

func (r *Repository) GetRegionalDistribution(ctx context.Context) ([]store.RegionalCost, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT p.deployed_region, COALESCE(SUM(s.total_cost_to_date), 0) AS total_cost
FROM project p
JOIN project_cost_summary s ON p.id = s.project_id
GROUP BY p.deployed_region
ORDER BY p.deployed_region ASC`)
	if err != nil {
		return nil, fmt.Errorf("regional distribution: %w", err)
	}
	defer func() { _ = rows.Close() }()

	distribution := make([]store.RegionalCost, 0)
	for rows.Next() {
		var regional store.RegionalCost
		if err := rows.Scan(&regional.Region, &regional.TotalCost); err != nil {
			return nil, fmt.Errorf("scan regional cost row: %w", err)
		}
		distribution = append(distribution, regional)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regional cost rows: %w", err)
	}
	return distribution, nil
}

func (r *Repository) ListCostReportRows(ctx context.Context) ([]store.CostReportRow, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT p.id, p.project_name, p.deployed_region, rg.id, rg.resource_group_name, mc.month, mc.cost
FROM monthly_cost mc
JOIN project p ON p.id = mc.project_id
JOIN resource_group rg ON rg.id = mc.resource_group_id
ORDER BY mc.month ASC, p.id ASC, rg.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cost report rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	report := make([]store.CostReportRow, 0)
	for rows.Next() {
		var row store.CostReportRow
		if err := rows.Scan(
			&row.ProjectID,
			&row.ProjectName,
			&row.DeployedRegion,
			&row.ResourceGroupID,
			&row.ResourceGroupName,
			&row.Month,
			&row.Cost,
		); err != nil {
			return nil, fmt.Errorf("scan cost report row: %w", err)
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost report rows: %w", err)
	}
	return report, nil
}
