package dashclient

import (
	"context"
	"errors"
	"sync"
)

// PageSizes are the page sizes the user list offers.
var PageSizes = []int{10, 50, 100}

// UserListController drives the user management screen: filter form, paging,
// and per-row verification. Fetches are last-intent-wins; starting a new
// fetch cancels the in-flight one, and only the newest result is applied.
type UserListController struct {
	client *Client

	mu         sync.Mutex
	query      UserQuery
	rows       []UserRow
	paging     Paging
	lastErr    error
	generation uint64
	cancel     context.CancelFunc
	verifying  map[int64]bool
}

func NewUserListController(client *Client) *UserListController {
	return &UserListController{
		client:    client,
		query:     UserQuery{Page: 1, Size: PageSizes[1]},
		verifying: make(map[int64]bool),
	}
}

func (ctl *UserListController) Rows() []UserRow {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.rows
}

func (ctl *UserListController) Paging() Paging {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.paging
}

func (ctl *UserListController) Err() error {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.lastErr
}

func (ctl *UserListController) Query() UserQuery {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.query
}

// Search applies a new filter form and refetches from page 1.
func (ctl *UserListController) Search(ctx context.Context, query UserQuery) error {
	ctl.mu.Lock()
	query.Page = 1
	if query.Size == 0 {
		query.Size = ctl.query.Size
	}
	ctl.query = query
	ctl.mu.Unlock()
	return ctl.fetch(ctx)
}

// Reset clears the filter form back to defaults and refetches.
func (ctl *UserListController) Reset(ctx context.Context) error {
	ctl.mu.Lock()
	ctl.query = UserQuery{Page: 1, Size: ctl.query.Size}
	ctl.mu.Unlock()
	return ctl.fetch(ctx)
}

// SetPageSize changes the page size. The page resets to 1 because the old
// offset is meaningless under the new size.
func (ctl *UserListController) SetPageSize(ctx context.Context, size int) error {
	valid := false
	for _, s := range PageSizes {
		if s == size {
			valid = true
			break
		}
	}
	if !valid {
		return errors.New("unsupported page size")
	}

	ctl.mu.Lock()
	ctl.query.Size = size
	ctl.query.Page = 1
	ctl.mu.Unlock()
	return ctl.fetch(ctx)
}

// CanPrev reports whether a previous page exists.
func (ctl *UserListController) CanPrev() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.paging.Number > 1
}

// CanNext reports whether a next page exists. An empty result set reports a
// single page, so both directions are disabled.
func (ctl *UserListController) CanNext() bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.paging.Number < ctl.paging.TotalPages
}

func (ctl *UserListController) Prev(ctx context.Context) error {
	ctl.mu.Lock()
	if ctl.paging.Number <= 1 {
		ctl.mu.Unlock()
		return nil
	}
	ctl.query.Page = ctl.paging.Number - 1
	ctl.mu.Unlock()
	return ctl.fetch(ctx)
}

func (ctl *UserListController) Next(ctx context.Context) error {
	ctl.mu.Lock()
	if ctl.paging.Number >= ctl.paging.TotalPages {
		ctl.mu.Unlock()
		return nil
	}
	ctl.query.Page = ctl.paging.Number + 1
	ctl.mu.Unlock()
	return ctl.fetch(ctx)
}

// Refresh refetches the current page with the current filter.
func (ctl *UserListController) Refresh(ctx context.Context) error {
	return ctl.fetch(ctx)
}

func (ctl *UserListController) fetch(ctx context.Context) error {
	ctl.mu.Lock()
	if ctl.cancel != nil {
		ctl.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctl.cancel = cancel
	ctl.generation++
	gen := ctl.generation
	query := ctl.query
	ctl.mu.Unlock()

	page, err := ctl.client.Users(fetchCtx, query)

	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if gen != ctl.generation {
		// A newer fetch superseded this one; drop the result.
		return nil
	}
	ctl.cancel = nil

	if err != nil {
		ctl.rows = []UserRow{}
		ctl.paging = Paging{Number: 1, TotalPages: 1}
		ctl.lastErr = err
		return err
	}

	ctl.rows = page.UserList
	if ctl.rows == nil {
		ctl.rows = []UserRow{}
	}
	ctl.paging = page.Paging
	if ctl.paging.TotalPages < 1 {
		ctl.paging.TotalPages = 1
	}
	if ctl.paging.Number < 1 {
		ctl.paging.Number = 1
	}
	ctl.query.Page = ctl.paging.Number
	ctl.lastErr = nil
	return nil
}

// CanVerify reports whether the verify action is enabled for a row. Already
// verified rows and rows with a verification in flight are disabled.
func (ctl *UserListController) CanVerify(row UserRow) bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return !row.Verified() && !ctl.verifying[row.UserID]
}

// Verify approves a single user and refetches the current page so the row
// reflects the new state. Concurrent verifies of the same row are rejected.
func (ctl *UserListController) Verify(ctx context.Context, userID int64) error {
	ctl.mu.Lock()
	if ctl.verifying[userID] {
		ctl.mu.Unlock()
		return errors.New("verification already in progress")
	}
	ctl.verifying[userID] = true
	ctl.mu.Unlock()

	err := ctl.client.VerifyUser(ctx, userID)

	ctl.mu.Lock()
	delete(ctl.verifying, userID)
	ctl.mu.Unlock()

	if err != nil {
		return err
	}
	return ctl.fetch(ctx)
}
