// Package dashclient is the typed API client for the dentadmin backend. It
// owns the dashboard's client-side state: the persisted session, the
// bearer-token transport, role-gated navigation, and the list/filter
// controllers the admin screens are built on.
package dashclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      Store
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The bearer transport is
// layered onto a copy, so the supplied client is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, store Store, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if store == nil {
		store = NewMemoryStore()
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	// Wrap a copy so a shared client handed in via WithHTTPClient keeps its
	// own transport.
	hc := *c.httpClient
	hc.Transport = newBearerTransport(store, hc.Transport)
	c.httpClient = &hc
	return c
}

func (c *Client) Store() Store {
	return c.store
}

// Session returns the currently persisted session, or a zero session when
// logged out.
func (c *Client) Session() Session {
	session, err := c.store.Load()
	if err != nil {
		return Session{}
	}
	return session
}

type envelope struct {
	RT       int             `json:"rt"`
	RTMsg    string          `json:"rtMsg"`
	Response json.RawMessage `json:"response"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode envelope: %w", err)
		}
	}

	if resp.StatusCode >= 300 {
		msg := env.RTMsg
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: env.RT, Message: msg}
	}

	if out != nil && len(env.Response) > 0 {
		if err := json.Unmarshal(env.Response, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// --- auth -----------------------------------------------------------------

type loginResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	IsFirstLogin     string `json:"isFirstLogin"`
	AdminID          *int64 `json:"adminId"`
	AdminName        string `json:"adminName"`
	AdminIsSuper     *bool  `json:"adminIsSuper"`
	UserID           *int64 `json:"userId"`
	UserName         string `json:"userName"`
	OrganizationID   *int64 `json:"organizationId"`
	OrganizationName string `json:"organizationName"`
}

// Login authenticates and persists the resulting session. The role is fixed
// here; nothing downstream re-derives it from stored strings.
func (c *Client) Login(ctx context.Context, userType, loginID, password string) (Session, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/login", nil, map[string]string{
		"userType": userType,
		"loginId":  loginID,
		"password": password,
	}, &resp)
	if err != nil {
		return Session{}, err
	}
	if resp.AccessToken == "" {
		return Session{}, fmt.Errorf("login response missing access token")
	}

	session := sessionFromLogin(resp, loginID)
	if err := c.store.Save(session); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// Logout invalidates the server session and clears local state. Local state
// is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil, nil)
	if clearErr := c.store.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

// Refresh rotates the refresh token and re-persists the session.
func (c *Client) Refresh(ctx context.Context) (Session, error) {
	current, err := c.store.Load()
	if err != nil {
		return Session{}, err
	}

	userType := "user"
	if current.Role == RoleAdmin || current.Role == RoleSuperAdmin {
		userType = "admin"
	}

	var resp loginResponse
	err = c.do(ctx, http.MethodPost, "/auth/refresh", nil, map[string]any{
		"userType":     userType,
		"principalId":  current.PrincipalID,
		"refreshToken": current.RefreshToken,
	}, &resp)
	if err != nil {
		return Session{}, err
	}

	session := sessionFromLogin(resp, current.LoginIdentifier)
	session.Language = current.Language
	// The organization identity outlives a token rotation; keep the stored
	// one when the response carries none.
	if resp.OrganizationID == nil {
		session.OrganizationID = current.OrganizationID
	}
	if resp.OrganizationName == "" {
		session.OrganizationName = current.OrganizationName
	}
	if err := c.store.Save(session); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

func sessionFromLogin(resp loginResponse, loginID string) Session {
	session := Session{
		AccessToken:      resp.AccessToken,
		RefreshToken:     resp.RefreshToken,
		LoginIdentifier:  loginID,
		OrganizationName: resp.OrganizationName,
		FirstLogin:       resp.IsFirstLogin == "Y",
	}
	if resp.OrganizationID != nil {
		session.OrganizationID = *resp.OrganizationID
	}
	switch {
	case resp.AdminID != nil:
		session.PrincipalID = *resp.AdminID
		session.Name = resp.AdminName
		session.Role = RoleAdmin
		if resp.AdminIsSuper != nil && *resp.AdminIsSuper {
			session.Role = RoleSuperAdmin
		}
	case resp.UserID != nil:
		session.PrincipalID = *resp.UserID
		session.Name = resp.UserName
		session.Role = RoleUser
	}
	return session
}

// --- users ----------------------------------------------------------------

type Paging struct {
	Number        int   `json:"number"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}

type UserRow struct {
	UserID                   int64    `json:"userId"`
	UserLoginIdentifier      string   `json:"userLoginIdentifier"`
	UserName                 string   `json:"userName"`
	UserGender               string   `json:"userGender"`
	OralStatus               *string  `json:"oralStatus"`
	OralStatusTitle          *string  `json:"oralStatusTitle"`
	OralCheckResultTotalType *string  `json:"oralCheckResultTotalType"`
	OralCheckDate            *string  `json:"oralCheckDate"`
	QuestionnaireType        *string  `json:"questionnaireType"`
	QuestionnaireDate        *string  `json:"questionnaireDate"`
	IsVerify                 string   `json:"isVerify"`
	ServiceNames             []string `json:"serviceNames"`
}

func (u UserRow) Verified() bool {
	return u.IsVerify == "Y"
}

type UserPage struct {
	UserList []UserRow `json:"userList"`
	Paging   Paging    `json:"paging"`
}

// UserQuery is the user-list search form.
type UserQuery struct {
	Keyword           string
	OralStatus        string
	QuestionnaireType string
	Gender            string
	Verify            string
	StartDate         string
	EndDate           string
	Page              int
	Size              int
}

func (q UserQuery) values() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("keyword", q.Keyword)
	set("oralStatus", q.OralStatus)
	set("questionnaireType", q.QuestionnaireType)
	set("gender", q.Gender)
	set("verify", q.Verify)
	set("startDate", q.StartDate)
	set("endDate", q.EndDate)
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		values.Set("size", strconv.Itoa(q.Size))
	}
	return values
}

func (c *Client) Users(ctx context.Context, query UserQuery) (UserPage, error) {
	var page UserPage
	err := c.do(ctx, http.MethodGet, "/admin/user", query.values(), nil, &page)
	return page, err
}

func (c *Client) VerifyUser(ctx context.Context, userID int64) error {
	values := url.Values{}
	values.Set("userId", strconv.FormatInt(userID, 10))
	return c.do(ctx, http.MethodPut, "/admin/user/verify", values, nil, nil)
}

// --- organizations --------------------------------------------------------

type Organization struct {
	OrganizationID        int64  `json:"organizationId"`
	OrganizationName      string `json:"organizationName"`
	PhoneNumber           string `json:"organizationPhoneNumber"`
	PlanID                int64  `json:"subscriptionPlanId"`
	PlanName              string `json:"subscriptionPlanName"`
	SubscriptionStartDate string `json:"subscriptionStartDate"`
	UsageResetDate        string `json:"usageResetDate"`
	SuccessCount          int64  `json:"successCount"`
}

func (c *Client) MyOrganization(ctx context.Context) (Organization, error) {
	var org Organization
	err := c.do(ctx, http.MethodGet, "/admin/organization/my", nil, nil, &org)
	return org, err
}

func (c *Client) UpdateOrganization(ctx context.Context, id int64, name, phoneNumber string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/organization/%d", id), nil, map[string]string{
		"organizationName":        name,
		"organizationPhoneNumber": phoneNumber,
	}, nil)
}

type RegisterOrganizationInput struct {
	OrganizationName string `json:"organizationName"`
	PhoneNumber      string `json:"organizationPhoneNumber"`
	PlanID           int64  `json:"subscriptionPlanId"`
}

// RegisterOrganization registers the first-login admin's organization and
// folds the new identity into the persisted session.
func (c *Client) RegisterOrganization(ctx context.Context, input RegisterOrganizationInput) (Organization, error) {
	var created Organization
	if err := c.do(ctx, http.MethodPost, "/organizations", nil, input, &created); err != nil {
		return Organization{}, err
	}

	if session, err := c.store.Load(); err == nil {
		session.OrganizationID = created.OrganizationID
		session.OrganizationName = created.OrganizationName
		session.FirstLogin = false
		_ = c.store.Save(session)
	}
	return created, nil
}

func (c *Client) CheckDuplicateOrganization(ctx context.Context, name string) (bool, error) {
	values := url.Values{}
	values.Set("name", name)

	var resp struct {
		Duplicate bool `json:"duplicate"`
	}
	err := c.do(ctx, http.MethodGet, "/organizations/check-duplicate", values, nil, &resp)
	return resp.Duplicate, err
}

type OrganizationSubscription struct {
	OrganizationID        int64   `json:"organizationId"`
	OrganizationName      string  `json:"organizationName"`
	PhoneNumber           string  `json:"organizationPhoneNumber"`
	PlanID                int64   `json:"subscriptionPlanId"`
	PlanName              string  `json:"subscriptionPlanName"`
	SubscriptionStartDate *string `json:"subscriptionStartDate"`
	UsageResetDate        *string `json:"usageResetDate"`
	SuccessCount          int64   `json:"successCount"`
}

func (c *Client) ListOrganizationSubscriptions(ctx context.Context) ([]OrganizationSubscription, error) {
	var subs []OrganizationSubscription
	err := c.do(ctx, http.MethodGet, "/admin/organization/organization", nil, nil, &subs)
	return subs, err
}

// --- subscriptions --------------------------------------------------------

type Plan struct {
	ID                  int64  `json:"id"`
	PlanName            string `json:"planName"`
	PlanCycle           string `json:"planCycle"`
	Price               int64  `json:"price"`
	MaxSuccessResponses int64  `json:"maxSuccessResponses"`
	PlanSort            int    `json:"planSort"`
}

func (c *Client) Plans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	err := c.do(ctx, http.MethodGet, "/subscription/info/all", nil, nil, &plans)
	return plans, err
}

type UsageSnapshot struct {
	OrganizationID        int64   `json:"organizationId"`
	OrganizationName      string  `json:"organizationName"`
	PlanID                int64   `json:"planId"`
	PlanName              string  `json:"planName"`
	PlanCycle             string  `json:"planCycle"`
	Price                 int64   `json:"price"`
	MaxSuccessResponses   int64   `json:"maxSuccessResponses"`
	TotalSuccessCount     int64   `json:"totalSuccessCount"`
	RemainingCount        int64   `json:"remainingCount"`
	UsageRate             float64 `json:"usageRate"`
	SubscriptionStartDate string  `json:"subscriptionStartDate"`
	UsageResetDate        string  `json:"usageResetDate"`
}

func (c *Client) SubscriptionInfo(ctx context.Context) (UsageSnapshot, error) {
	var snap UsageSnapshot
	err := c.do(ctx, http.MethodGet, "/subscription/info", nil, nil, &snap)
	return snap, err
}

func (c *Client) ChangePlan(ctx context.Context, orgID, planID int64) error {
	path := fmt.Sprintf("/admin/subscriptions/organization/%d/%d", orgID, planID)
	return c.do(ctx, http.MethodPut, path, nil, nil, nil)
}

// --- statistics & usage ---------------------------------------------------

type OralCheckStat struct {
	OralCheckResultType string `json:"oralCheckResultType"`
	Count               int64  `json:"count"`
	CountHealthy        int64  `json:"countHealthy"`
	CountGood           int64  `json:"countGood"`
	CountAttention      int64  `json:"countAttention"`
	CountDanger         int64  `json:"countDanger"`
}

type OrgStatistic struct {
	OrganizationID   int64           `json:"organizationId"`
	OrganizationName string          `json:"organizationName"`
	TotalUsers       int64           `json:"totalUsers"`
	MaleUsers        int64           `json:"maleUsers"`
	FemaleUsers      int64           `json:"femaleUsers"`
	NewUsers         int64           `json:"newUsers"`
	OralCheckStats   []OralCheckStat `json:"oralCheckStats"`
}

func (c *Client) StatisticMe(ctx context.Context) (UsageSnapshot, error) {
	var snap UsageSnapshot
	err := c.do(ctx, http.MethodGet, "/admin/statistic/me", nil, nil, &snap)
	return snap, err
}

func (c *Client) OrgUserStatistics(ctx context.Context, startDate, endDate string) (OrgStatistic, error) {
	values := url.Values{}
	if startDate != "" {
		values.Set("startDate", startDate)
	}
	if endDate != "" {
		values.Set("endDate", endDate)
	}

	var stat OrgStatistic
	err := c.do(ctx, http.MethodGet, "/admin/statistic/org/users", values, nil, &stat)
	return stat, err
}

func (c *Client) AllOrgStatistics(ctx context.Context) ([]OrgStatistic, error) {
	var stats []OrgStatistic
	err := c.do(ctx, http.MethodGet, "/admin/statistic/all", nil, nil, &stats)
	return stats, err
}

type ServiceUsage struct {
	UserID           int64  `json:"userId"`
	UserName         string `json:"userName"`
	UserPhoneNumber  string `json:"userPhoneNumber"`
	OrganizationName string `json:"organizationName"`
	ServiceName      string `json:"serviceName"`
	SuccessCount     int64  `json:"successCount"`
}

func (c *Client) UserUsage(ctx context.Context) ([]ServiceUsage, error) {
	var usage []ServiceUsage
	err := c.do(ctx, http.MethodGet, "/admin/users/usage", nil, nil, &usage)
	return usage, err
}

func (c *Client) OrganizationUsage(ctx context.Context) ([]UsageSnapshot, error) {
	var snaps []UsageSnapshot
	err := c.do(ctx, http.MethodGet, "/admin/organization/usage", nil, nil, &snaps)
	return snaps, err
}
