package morning

import (
	"context"
	"errors"
	"fmt"

	"github.com/helpcomp/morning-bill-checker/period"
	"github.com/helpcomp/morning-bill-checker/reconcile"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type searchRequest struct {
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
}

type ExpensesResponse struct {
	Total int       `json:"total"`
	Items []Expense `json:"items"`
}

type Expense struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Supplier    *Supplier       `json:"supplier"`
}

type Supplier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SupplierName returns the supplier name, or "" when the record has none.
func (e Expense) SupplierName() string {
	if e.Supplier == nil {
		return ""
	}
	return e.Supplier.Name
}

// SearchExpenses lists the expenses recorded between fromDate and toDate
// (YYYY-MM-DD, inclusive) in a single request.
func (m *Morning) SearchExpenses(ctx context.Context, fromDate, toDate string) (ExpensesResponse, error) {
	token, err := m.Token(ctx)
	if err != nil {
		return ExpensesResponse{}, err
	}

	var resp ExpensesResponse
	err = m.postJSON(ctx, m.expenseURL, token, searchRequest{FromDate: fromDate, ToDate: toDate}, &resp)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			m.invalidateToken()
		}
		return ExpensesResponse{}, fmt.Errorf("failed to fetch Expenses: %w", err)
	}
	return resp, nil
}

// FetchBills implements reconcile.Fetcher. A response without an items list
// (empty body, null or no items key) is reported as reconcile.ErrNoResult.
func (m *Morning) FetchBills(ctx context.Context, p period.Period) ([]reconcile.Bill, error) {
	resp, err := m.SearchExpenses(ctx, p.FromDate(), p.ToDate())
	if err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return nil, reconcile.ErrNoResult
	}

	bills := make([]reconcile.Bill, 0, len(resp.Items))
	for _, e := range resp.Items {
		if d, err := period.ParseDate(e.Date); err == nil && !p.Contains(d) {
			log.Warn().Str("ID", e.ID).Str("Date", e.Date).Str("Period", p.String()).Msg("Expense dated outside the requested period")
		}
		bills = append(bills, reconcile.Bill{
			ID:       e.ID,
			Supplier: e.SupplierName(),
			Date:     e.Date,
			Amount:   e.Amount,
		})
	}
	return bills, nil
}
