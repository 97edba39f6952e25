// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/awasec/awa-cms/internal/model"
)

const projectColumns = `id, name, user_id, access_code, total_cost, progress, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Name, &p.UserID, &p.AccessCode, &p.TotalCost, &p.Progress,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetProjectByID fetches a project by primary key.
func (q *Queries) GetProjectByID(ctx context.Context, id int64) (model.Project, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// GetProjectByAccessCode fetches a project by its portal access code.
func (q *Queries) GetProjectByAccessCode(ctx context.Context, code string) (model.Project, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE access_code = ?`, code)
	return scanProject(row)
}

// ListProjectsParams filters and paginates the project list.
type ListProjectsParams struct {
	UserID int64 // 0 matches all owners
	Search string
	Limit  int64
	Offset int64
}

// ListProjects returns a page of projects, newest first.
func (q *Queries) ListProjects(ctx context.Context, arg ListProjectsParams) ([]model.Project, error) {
	search := escapeLike(arg.Search)
	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE (? = 0 OR user_id = ?)
		AND (? = '' OR json_extract(name, '$.en') LIKE '%' || ? || '%' ESCAPE '\'
			OR json_extract(name, '$.ar') LIKE '%' || ? || '%' ESCAPE '\')
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := q.db.QueryContext(ctx, query,
		arg.UserID, arg.UserID, search, search, search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CountProjects counts projects matching the same filters as ListProjects.
func (q *Queries) CountProjects(ctx context.Context, arg ListProjectsParams) (int64, error) {
	search := escapeLike(arg.Search)
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects
		WHERE (? = 0 OR user_id = ?)
		AND (? = '' OR json_extract(name, '$.en') LIKE '%' || ? || '%' ESCAPE '\'
			OR json_extract(name, '$.ar') LIKE '%' || ? || '%' ESCAPE '\')`,
		arg.UserID, arg.UserID, search, search, search).Scan(&count)
	return count, err
}

// CreateProjectParams holds the fields for creating a project.
type CreateProjectParams struct {
	Name       model.LocalizedText
	UserID     int64
	AccessCode string
	TotalCost  float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateProject inserts a project and returns the stored row.
func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (model.Project, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO projects
		(name, user_id, access_code, total_cost, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.UserID, arg.AccessCode, arg.TotalCost, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return model.Project{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Project{}, err
	}
	return q.GetProjectByID(ctx, id)
}

// UpdateProjectParams holds the fields for updating a project.
type UpdateProjectParams struct {
	ID        int64
	Name      model.LocalizedText
	UserID    int64
	TotalCost float64
	UpdatedAt time.Time
}

// UpdateProject updates project fields and returns the stored row.
func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (model.Project, error) {
	_, err := q.db.ExecContext(ctx, `UPDATE projects
		SET name = ?, user_id = ?, total_cost = ?, updated_at = ? WHERE id = ?`,
		arg.Name, arg.UserID, arg.TotalCost, arg.UpdatedAt, arg.ID)
	if err != nil {
		return model.Project{}, err
	}
	return q.GetProjectByID(ctx, arg.ID)
}

// UpdateProjectAccessCode rotates the portal access code.
func (q *Queries) UpdateProjectAccessCode(ctx context.Context, id int64, accessCode string, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE projects SET access_code = ?, updated_at = ? WHERE id = ?`,
		accessCode, updatedAt, id)
	return err
}

// UpdateProjectProgress stores the derived overall progress.
func (q *Queries) UpdateProjectProgress(ctx context.Context, id, progress int64, updatedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE projects SET progress = ?, updated_at = ? WHERE id = ?`,
		progress, updatedAt, id)
	return err
}

// DeleteProject removes a project and its phases, payments and files.
func (q *Queries) DeleteProject(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}

// ---- Phases ----

const phaseColumns = `id, project_id, title, description, status, duration, progress, position`

func scanPhase(row interface{ Scan(...any) error }) (model.Phase, error) {
	var p model.Phase
	err := row.Scan(&p.ID, &p.ProjectID, &p.Title, &p.Description, &p.Status, &p.Duration,
		&p.Progress, &p.Position)
	return p, err
}

// ListProjectPhases returns the phases of a project in position order.
func (q *Queries) ListProjectPhases(ctx context.Context, projectID int64) ([]model.Phase, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+phaseColumns+` FROM project_phases
		WHERE project_id = ? ORDER BY position, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []model.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

// ReplaceProjectPhases swaps the full phase list of a project.
// Phases are always written as a unit, matching how the admin form submits them.
func (q *Queries) ReplaceProjectPhases(ctx context.Context, projectID int64, phases []model.Phase) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM project_phases WHERE project_id = ?`, projectID); err != nil {
		return err
	}
	for i, p := range phases {
		_, err := q.db.ExecContext(ctx, `INSERT INTO project_phases
			(project_id, title, description, status, duration, progress, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			projectID, p.Title, p.Description, p.Status, p.Duration, p.Progress, int64(i))
		if err != nil {
			return err
		}
	}
	return nil
}

// ---- Payments ----

const paymentColumns = `id, project_id, title, amount, due_date, status, paid_at`

func scanPayment(row interface{ Scan(...any) error }) (model.Payment, error) {
	var p model.Payment
	var paidAt sql.NullTime
	err := row.Scan(&p.ID, &p.ProjectID, &p.Title, &p.Amount, &p.DueDate, &p.Status, &paidAt)
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	return p, err
}

// GetPaymentByID fetches a payment by primary key.
func (q *Queries) GetPaymentByID(ctx context.Context, id int64) (model.Payment, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM project_payments WHERE id = ?`, id)
	return scanPayment(row)
}

// ListProjectPayments returns the payments of a project by due date.
func (q *Queries) ListProjectPayments(ctx context.Context, projectID int64) ([]model.Payment, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM project_payments
		WHERE project_id = ? ORDER BY due_date, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// CreatePaymentParams holds the fields for adding a payment to a project.
type CreatePaymentParams struct {
	ProjectID int64
	Title     model.LocalizedText
	Amount    float64
	DueDate   time.Time
	Status    string
}

// CreatePayment inserts a payment and returns the stored row.
func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (model.Payment, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO project_payments
		(project_id, title, amount, due_date, status) VALUES (?, ?, ?, ?, ?)`,
		arg.ProjectID, arg.Title, arg.Amount, arg.DueDate, arg.Status)
	if err != nil {
		return model.Payment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Payment{}, err
	}
	return q.GetPaymentByID(ctx, id)
}

// UpdatePaymentStatus sets a payment's status, recording paid_at for paid.
func (q *Queries) UpdatePaymentStatus(ctx context.Context, id int64, status string, paidAt sql.NullTime) error {
	_, err := q.db.ExecContext(ctx, `UPDATE project_payments SET status = ?, paid_at = ? WHERE id = ?`,
		status, paidAt, id)
	return err
}

// DeletePayment removes a payment.
func (q *Queries) DeletePayment(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM project_payments WHERE id = ?`, id)
	return err
}

// ListUnpaidPayments returns all payments that are not yet paid.
// Used by the scheduler to recompute time-derived statuses.
func (q *Queries) ListUnpaidPayments(ctx context.Context) ([]model.Payment, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM project_payments
		WHERE status != ? ORDER BY due_date`, model.PaymentStatusPaid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ---- Files ----

const fileColumns = `id, project_id, uploaded_by, url, name, type, size, created_at`

func scanFile(row interface{ Scan(...any) error }) (model.ProjectFile, error) {
	var f model.ProjectFile
	err := row.Scan(&f.ID, &f.ProjectID, &f.UploadedBy, &f.URL, &f.Name, &f.Type, &f.Size, &f.CreatedAt)
	return f, err
}

// ListProjectFiles returns the files of a project, newest first.
func (q *Queries) ListProjectFiles(ctx context.Context, projectID int64) ([]model.ProjectFile, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+fileColumns+` FROM project_files
		WHERE project_id = ? ORDER BY created_at DESC, id DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []model.ProjectFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// CreateProjectFileParams holds the fields for attaching a file to a project.
type CreateProjectFileParams struct {
	ProjectID  int64
	UploadedBy string
	URL        string
	Name       string
	Type       string
	Size       int64
	CreatedAt  time.Time
}

// CreateProjectFile inserts a file record and returns the stored row.
func (q *Queries) CreateProjectFile(ctx context.Context, arg CreateProjectFileParams) (model.ProjectFile, error) {
	res, err := q.db.ExecContext(ctx, `INSERT INTO project_files
		(project_id, uploaded_by, url, name, type, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.ProjectID, arg.UploadedBy, arg.URL, arg.Name, arg.Type, arg.Size, arg.CreatedAt)
	if err != nil {
		return model.ProjectFile{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ProjectFile{}, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM project_files WHERE id = ?`, id)
	return scanFile(row)
}

// DeleteProjectFile removes a file record.
func (q *Queries) DeleteProjectFile(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM project_files WHERE id = ?`, id)
	return err
}
