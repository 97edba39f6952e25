// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// NullInt64 mirrors the wire encoding of nullable integer columns.
type NullInt64 struct {
	Int64 int64 `json:"Int64"`
	Valid bool  `json:"Valid"`
}

// NullTime mirrors the wire encoding of nullable timestamp columns.
type NullTime struct {
	Time  time.Time `json:"Time"`
	Valid bool      `json:"Valid"`
}

// Status is the health payload from GET /status.
type Status struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status checks API health.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var s Status
	_, err := c.get(ctx, "/status", nil, &s)
	return s, err
}

// ---- Auth ----

// User is a staff or client account as returned by the API. Password and
// login code hashes never appear on the wire.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastLoginAt NullTime  `json:"last_login_at,omitempty"`
}

// LoginResponse is the payload from POST /auth/login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login authenticates a staff account and stores the returned token on the
// client for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/auth/login", body, &out); err != nil {
		return LoginResponse{}, err
	}
	c.token = out.Token
	return out, nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	_, err := c.get(ctx, "/auth/me", nil, &u)
	return u, err
}

// ---- Articles ----

// Article is a localized article from the public feed. Body is empty in
// list responses and populated on detail reads.
type Article struct {
	ID          int64      `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Body        string     `json:"body,omitempty"`
	MainImage   string     `json:"main_image"`
	ServiceID   int64      `json:"service_id"`
	ServiceName string     `json:"service_name,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ListArticlesParams filter the public article feed.
type ListArticlesParams struct {
	Page      int64
	PerPage   int64
	ServiceID int64
}

// ListArticles fetches a page of the published feed, newest first.
func (c *Client) ListArticles(ctx context.Context, params ListArticlesParams) (Page[Article], error) {
	query := url.Values{}
	addPagination(query, params.Page, params.PerPage)
	if params.ServiceID > 0 {
		query.Set("service", strconv.FormatInt(params.ServiceID, 10))
	}

	var page Page[Article]
	meta, err := c.get(ctx, "/articles", query, &page.Items)
	if err != nil {
		return Page[Article]{}, err
	}
	if meta != nil {
		page.Meta = *meta
	}
	return page, nil
}

// GetArticle fetches one published article by slug, body included.
func (c *Client) GetArticle(ctx context.Context, slug string) (Article, error) {
	var a Article
	_, err := c.get(ctx, "/articles/"+url.PathEscape(slug), nil, &a)
	return a, err
}

// ---- Services ----

// ServiceFeature is one bullet point of a service offering.
type ServiceFeature struct {
	Icon        string `json:"icon"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Service is a localized service offering from the public catalog.
type Service struct {
	ID          int64            `json:"id"`
	Slug        string           `json:"slug"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Features    []ServiceFeature `json:"features"`
	Images      []string         `json:"images"`
}

// ListServices fetches the public service catalog.
func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	var services []Service
	_, err := c.get(ctx, "/services", nil, &services)
	return services, err
}

// GetService fetches one service by slug.
func (c *Client) GetService(ctx context.Context, slug string) (Service, error) {
	var s Service
	_, err := c.get(ctx, "/services/"+url.PathEscape(slug), nil, &s)
	return s, err
}

// ---- Sections ----

// Section is one localized content block of a site page.
type Section struct {
	ID          int64            `json:"id"`
	Page        string           `json:"page"`
	Kind        string           `json:"kind"`
	ServiceID   *int64           `json:"service_id,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	Features    []ServiceFeature `json:"features"`
	VideoURL    string           `json:"video_url,omitempty"`
	Order       int64            `json:"order"`
}

// ListSections fetches the content blocks of one site page in display order.
func (c *Client) ListSections(ctx context.Context, page string) ([]Section, error) {
	var sections []Section
	_, err := c.get(ctx, "/pages/"+url.PathEscape(page)+"/sections", nil, &sections)
	return sections, err
}

// GetSectionByKind fetches one content block of a page by its kind. A page
// that has no block of that kind is a not-found error, never an empty value.
func (c *Client) GetSectionByKind(ctx context.Context, page, kind string) (Section, error) {
	var s Section
	_, err := c.get(ctx, "/pages/"+url.PathEscape(page)+"/sections/"+url.PathEscape(kind), nil, &s)
	return s, err
}

// ---- Quotation requests ----

// QuoteRequest is the public quotation request form.
type QuoteRequest struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	CompanyName string     `json:"company_name,omitempty"`
	ServiceID   *int64     `json:"service_id,omitempty"`
	BudgetFrom  float64    `json:"budget_from"`
	BudgetTo    float64    `json:"budget_to"`
	Duration    string     `json:"duration,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description"`
}

// Quote is a quotation request as stored by the server.
type Quote struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CompanyName string    `json:"company_name,omitempty"`
	ServiceID   NullInt64 `json:"service_id,omitempty"`
	BudgetFrom  float64   `json:"budget_from"`
	BudgetTo    float64   `json:"budget_to"`
	Duration    string    `json:"duration,omitempty"`
	StartDate   NullTime  `json:"start_date,omitempty"`
	EndDate     NullTime  `json:"end_date,omitempty"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SubmitQuote submits a quotation request through the public form.
func (c *Client) SubmitQuote(ctx context.Context, req QuoteRequest) (Quote, error) {
	var q Quote
	err := c.post(ctx, "/quotes", req, &q)
	return q, err
}

// ListQuotesParams filter the admin quotation list.
type ListQuotesParams struct {
	Page    int64
	PerPage int64
	Status  string
	Search  string
}

// ListQuotes fetches a page of quotation requests. Requires a staff token.
func (c *Client) ListQuotes(ctx context.Context, params ListQuotesParams) (Page[Quote], error) {
	query := url.Values{}
	addPagination(query, params.Page, params.PerPage)
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}

	var page Page[Quote]
	meta, err := c.get(ctx, "/admin/quotes", query, &page.Items)
	if err != nil {
		return Page[Quote]{}, err
	}
	if meta != nil {
		page.Meta = *meta
	}
	return page, nil
}

// GetQuote fetches one quotation request. Requires a staff token.
func (c *Client) GetQuote(ctx context.Context, id int64) (Quote, error) {
	var q Quote
	_, err := c.get(ctx, "/admin/quotes/"+strconv.FormatInt(id, 10), nil, &q)
	return q, err
}

// UpdateQuoteStatus moves a quotation request through its workflow.
// Requires a staff token.
func (c *Client) UpdateQuoteStatus(ctx context.Context, id int64, status string) (Quote, error) {
	var q Quote
	body := map[string]string{"status": status}
	err := c.patch(ctx, "/admin/quotes/"+strconv.FormatInt(id, 10), body, &q)
	return q, err
}

// DeleteQuote removes a quotation request. Requires a staff token.
func (c *Client) DeleteQuote(ctx context.Context, id int64) error {
	return c.delete(ctx, "/admin/quotes/"+strconv.FormatInt(id, 10))
}

// ---- Users ----

// CreateUserRequest creates a staff or client account. Password is required
// for staff roles and ignored for clients, who authenticate with a
// server-generated login code instead.
type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// CreatedUser is the response to account creation. LoginCode is present
// exactly once, for client accounts, and cannot be retrieved again.
type CreatedUser struct {
	User      User   `json:"user"`
	LoginCode string `json:"login_code,omitempty"`
}

// ListUsersParams filter the admin user list.
type ListUsersParams struct {
	Page    int64
	PerPage int64
	Role    string
	Search  string
}

// ListUsers fetches a page of accounts. Requires an admin token.
func (c *Client) ListUsers(ctx context.Context, params ListUsersParams) (Page[User], error) {
	query := url.Values{}
	addPagination(query, params.Page, params.PerPage)
	if params.Role != "" {
		query.Set("role", params.Role)
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}

	var page Page[User]
	meta, err := c.get(ctx, "/admin/users", query, &page.Items)
	if err != nil {
		return Page[User]{}, err
	}
	if meta != nil {
		page.Meta = *meta
	}
	return page, nil
}

// CreateUser creates an account. Requires an admin token.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (CreatedUser, error) {
	var out CreatedUser
	err := c.post(ctx, "/admin/users", req, &out)
	return out, err
}

// GetUser fetches one account. Requires an admin token.
func (c *Client) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	_, err := c.get(ctx, "/admin/users/"+strconv.FormatInt(id, 10), nil, &u)
	return u, err
}

// DeleteUser removes an account. Requires an admin token. Clients with
// projects cannot be deleted.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.delete(ctx, "/admin/users/"+strconv.FormatInt(id, 10))
}

// ResetLoginCode issues a fresh portal login code for a client account,
// invalidating the previous one. Requires an admin token.
func (c *Client) ResetLoginCode(ctx context.Context, id int64) (CreatedUser, error) {
	var out CreatedUser
	err := c.post(ctx, "/admin/users/"+strconv.FormatInt(id, 10)+"/login-code", nil, &out)
	return out, err
}

// ---- Projects ----

// LocalizedText is a bilingual value as returned by admin endpoints, which
// carry both locales rather than a resolved string.
type LocalizedText struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

// Project is a client engagement tracked in the portal.
type Project struct {
	ID        int64         `json:"id"`
	Name      LocalizedText `json:"name"`
	UserID    int64         `json:"user_id"`
	TotalCost float64       `json:"total_cost"`
	Progress  int64         `json:"progress"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Phase is one stage of a project timeline.
type Phase struct {
	ID          int64         `json:"id"`
	ProjectID   int64         `json:"project_id"`
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	Status      string        `json:"status"`
	Duration    string        `json:"duration"`
	Progress    int64         `json:"progress"`
	Position    int64         `json:"position"`
}

// Payment is a billed installment on a project.
type Payment struct {
	ID        int64         `json:"id"`
	ProjectID int64         `json:"project_id"`
	Title     LocalizedText `json:"title"`
	Amount    float64       `json:"amount"`
	DueDate   time.Time     `json:"due_date"`
	Status    string        `json:"status"`
	PaidAt    *time.Time    `json:"paid_at,omitempty"`
}

// ProjectFile is a document attached to a project by either side.
type ProjectFile struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	UploadedBy string    `json:"uploaded_by"`
	URL        string    `json:"url"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProjectDetail is a project with its related rows, as returned by the
// single-project admin endpoints.
type ProjectDetail struct {
	Project
	AccessCode string        `json:"access_code"`
	ClientName string        `json:"client_name"`
	Phases     []Phase       `json:"phases"`
	Payments   []Payment     `json:"payments"`
	Files      []ProjectFile `json:"files"`
}

// ListProjectsParams filter the admin project list.
type ListProjectsParams struct {
	Page    int64
	PerPage int64
	UserID  int64
	Search  string
}

// ListProjects fetches a page of projects, newest first. Requires a staff
// token.
func (c *Client) ListProjects(ctx context.Context, params ListProjectsParams) (Page[Project], error) {
	query := url.Values{}
	addPagination(query, params.Page, params.PerPage)
	if params.UserID > 0 {
		query.Set("user_id", strconv.FormatInt(params.UserID, 10))
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}

	var page Page[Project]
	meta, err := c.get(ctx, "/admin/projects", query, &page.Items)
	if err != nil {
		return Page[Project]{}, err
	}
	if meta != nil {
		page.Meta = *meta
	}
	return page, nil
}

// GetProject fetches one project with phases, payments and files. Requires
// a staff token.
func (c *Client) GetProject(ctx context.Context, id int64) (ProjectDetail, error) {
	var detail ProjectDetail
	_, err := c.get(ctx, "/admin/projects/"+strconv.FormatInt(id, 10), nil, &detail)
	return detail, err
}

// ProjectRequest is the admin create/update project body.
type ProjectRequest struct {
	Name      LocalizedText `json:"name"`
	UserID    int64         `json:"user_id"`
	TotalCost float64       `json:"total_cost"`
}

// CreateProject creates a project for a client account. The portal access
// code appears in the returned detail. Requires a staff token.
func (c *Client) CreateProject(ctx context.Context, req ProjectRequest) (ProjectDetail, error) {
	var detail ProjectDetail
	err := c.post(ctx, "/admin/projects", req, &detail)
	return detail, err
}

// UpdateProject updates a project's name, owner or cost. Requires a staff
// token.
func (c *Client) UpdateProject(ctx context.Context, id int64, req ProjectRequest) (ProjectDetail, error) {
	var detail ProjectDetail
	err := c.put(ctx, "/admin/projects/"+strconv.FormatInt(id, 10), req, &detail)
	return detail, err
}

// DeleteProject removes a project with its phases, payments and files.
// Requires a staff token.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.delete(ctx, "/admin/projects/"+strconv.FormatInt(id, 10))
}

// RegenerateProjectAccessCode rotates the portal access code. The old code
// stops working immediately. Requires a staff token.
func (c *Client) RegenerateProjectAccessCode(ctx context.Context, id int64) (string, error) {
	var out struct {
		AccessCode string `json:"access_code"`
	}
	err := c.post(ctx, "/admin/projects/"+strconv.FormatInt(id, 10)+"/access-code", nil, &out)
	return out.AccessCode, err
}

// ---- Notifications ----

// NotificationData is the typed context attached to a notification.
type NotificationData struct {
	Type        string `json:"type"`
	QuoteID     int64  `json:"quote_id,omitempty"`
	ProjectID   int64  `json:"project_id,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
	ClientName  string `json:"client_name,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
}

// Notification is a dashboard notification.
type Notification struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Data      NotificationData `json:"data"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// ListNotificationsParams filter the notification list.
type ListNotificationsParams struct {
	Page       int64
	PerPage    int64
	UnreadOnly bool
}

// ListNotifications fetches a page of notifications, newest first.
// Requires a staff token.
func (c *Client) ListNotifications(ctx context.Context, params ListNotificationsParams) (Page[Notification], error) {
	query := url.Values{}
	addPagination(query, params.Page, params.PerPage)
	if params.UnreadOnly {
		query.Set("unread", "true")
	}

	var page Page[Notification]
	meta, err := c.get(ctx, "/admin/notifications", query, &page.Items)
	if err != nil {
		return Page[Notification]{}, err
	}
	if meta != nil {
		page.Meta = *meta
	}
	return page, nil
}

// UnreadNotificationCount returns the unread badge count. Dashboards poll
// this. Requires a staff token.
func (c *Client) UnreadNotificationCount(ctx context.Context) (int64, error) {
	var out struct {
		Unread int64 `json:"unread"`
	}
	_, err := c.get(ctx, "/admin/notifications/unread-count", nil, &out)
	return out.Unread, err
}

// MarkNotificationRead marks one notification as read. Requires a staff
// token.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.post(ctx, "/admin/notifications/"+strconv.FormatInt(id, 10)+"/read", nil, nil)
}

// MarkAllNotificationsRead marks every notification as read. Requires a
// staff token.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.post(ctx, "/admin/notifications/read-all", nil, nil)
}

func addPagination(query url.Values, page, perPage int64) {
	if page > 0 {
		query.Set("page", strconv.FormatInt(page, 10))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.FormatInt(perPage, 10))
	}
}
