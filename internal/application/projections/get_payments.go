package projections

import (
	"context"
	"time"

	"clubify/internal/adapters/storage/payment"
	"clubify/internal/application/apperr"
	"clubify/internal/application/listutil"
	"clubify/internal/domain/civil"
	domainPayment "clubify/internal/domain/payment"
	domainTeam "clubify/internal/domain/team"
)

// GetPaymentListQuery carries query parameters. Status is an effective status;
// empty lists every record. ClubID or PlayerIDs scope the query.
type GetPaymentListQuery struct {
	ClubID    string
	TeamID    string
	PlayerIDs []string
	Month     int
	Year      int
	Status    string
	Page      listutil.PageParams
}

// PaymentRow is one payment record as reported to clients.
type PaymentRow struct {
	ID          string     `json:"id"`
	PlayerID    string     `json:"playerId"`
	PlayerName  string     `json:"playerName"`
	TeamID      string     `json:"teamId"`
	TeamName    string     `json:"teamName"`
	Month       int        `json:"month"`
	Year        int        `json:"year"`
	AmountDue   int64      `json:"amountDue"`
	AmountPaid  int64      `json:"amountPaid"`
	Discount    int64      `json:"discountApplied"`
	Outstanding int64      `json:"outstanding"`
	Status      string     `json:"status"`
	DueDate     string     `json:"dueDate"`
	PaidAt      *time.Time `json:"paidAt"`
	Notes       string     `json:"notes,omitempty"`
}

// GetPaymentListResult carries the query result.
type GetPaymentListResult struct {
	Payments []PaymentRow      `json:"payments"`
	Page     listutil.PageInfo `json:"page"`
}

// GetPaymentListDeps holds dependencies for GetPaymentList.
type GetPaymentListDeps struct {
	PaymentStore PaymentStore
	PlayerStore  PlayerStore
	TeamStore    TeamStore
	Now          func() time.Time
}

// QueryGetPaymentList lists payment records with their status derived for today.
// PRE: Status is empty or one of the payment statuses
// POST: every row's Status is the effective status; stored rows are unchanged
// INVARIANT: filtering by overdue returns exactly the unpaid rows due before today
func QueryGetPaymentList(ctx context.Context, query GetPaymentListQuery, deps GetPaymentListDeps) (GetPaymentListResult, error) {
	today := civil.Format(nowOr(deps.Now))
	filter, err := paymentFilter(query.ClubID, query.Status, today)
	if err != nil {
		return GetPaymentListResult{}, err
	}
	filter.TeamID = query.TeamID
	filter.PlayerIDs = query.PlayerIDs
	filter.Month = query.Month
	filter.Year = query.Year

	total, err := deps.PaymentStore.Count(ctx, filter)
	if err != nil {
		return GetPaymentListResult{}, err
	}
	page := query.Page
	if page.PerPage == 0 {
		page = listutil.PageParams{Page: 1, PerPage: listutil.DefaultPerPage}
	}
	info := listutil.NewPageInfo(page.Page, page.PerPage, total)
	filter.Limit = info.PerPage
	filter.Offset = (info.Page - 1) * info.PerPage

	records, err := deps.PaymentStore.List(ctx, filter)
	if err != nil {
		return GetPaymentListResult{}, err
	}

	playerNames, teamNames, err := paymentNames(ctx, records, deps)
	if err != nil {
		return GetPaymentListResult{}, err
	}

	rows := make([]PaymentRow, 0, len(records))
	for i := range records {
		r := &records[i]
		row := PaymentRow{
			ID:          r.ID,
			PlayerID:    r.PlayerID,
			PlayerName:  playerNames[r.PlayerID],
			TeamID:      r.TeamID,
			TeamName:    teamNames[r.TeamID],
			Month:       r.PeriodMonth,
			Year:        r.PeriodYear,
			AmountDue:   r.AmountDue,
			AmountPaid:  r.AmountPaid,
			Discount:    r.DiscountApplied,
			Outstanding: r.Outstanding(),
			Status:      r.EffectiveStatus(today),
			DueDate:     r.DueDate,
			Notes:       r.Notes,
		}
		if !r.PaidAt.IsZero() {
			paidAt := r.PaidAt
			row.PaidAt = &paidAt
		}
		rows = append(rows, row)
	}
	return GetPaymentListResult{Payments: rows, Page: info}, nil
}

// paymentFilter translates an effective-status filter into stored-status and
// due-date conditions.
func paymentFilter(clubID, status, today string) (payment.ListFilter, error) {
	f := payment.ListFilter{ClubID: clubID}
	switch status {
	case "":
	case domainPayment.StatusOverdue:
		f.Statuses = []string{domainPayment.StatusUnpaid}
		f.DueBefore = today
	case domainPayment.StatusUnpaid:
		f.Statuses = []string{domainPayment.StatusUnpaid}
		f.DueOnOrAfter = today
	case domainPayment.StatusPartial, domainPayment.StatusPaid:
		f.Statuses = []string{status}
	default:
		return f, apperr.Invalid(domainPayment.ErrInvalidStatus)
	}
	return f, nil
}

func paymentNames(ctx context.Context, records []domainPayment.Record, deps GetPaymentListDeps) (map[string]string, map[string]string, error) {
	playerNames := make(map[string]string)
	teamNames := make(map[string]string)
	if len(records) == 0 {
		return playerNames, teamNames, nil
	}
	var playerIDs, teamIDs []string
	for _, r := range records {
		if _, ok := playerNames[r.PlayerID]; !ok {
			playerNames[r.PlayerID] = ""
			playerIDs = append(playerIDs, r.PlayerID)
		}
		if _, ok := teamNames[r.TeamID]; !ok {
			teamNames[r.TeamID] = ""
			teamIDs = append(teamIDs, r.TeamID)
		}
	}
	players, err := deps.PlayerStore.ListByIDs(ctx, playerIDs)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range players {
		playerNames[p.ID] = p.FullName()
	}
	teams, err := deps.TeamStore.ListByIDs(ctx, teamIDs)
	if err != nil {
		return nil, nil, err
	}
	for id, name := range domainTeam.NamesByID(teams) {
		teamNames[id] = name
	}
	return playerNames, teamNames, nil
}

// --- Overview ---

// GetPaymentOverviewQuery carries query parameters. Zero Month/Year cover all periods.
type GetPaymentOverviewQuery struct {
	ClubID string
	Month  int
	Year   int
}

// StatusTotals aggregates records sharing one effective status.
type StatusTotals struct {
	Count       int   `json:"count"`
	AmountDue   int64 `json:"amountDue"`
	AmountPaid  int64 `json:"amountPaid"`
	Outstanding int64 `json:"outstanding"`
}

// GetPaymentOverviewResult carries the query result.
type GetPaymentOverviewResult struct {
	Records          int                     `json:"records"`
	TotalDue         int64                   `json:"totalDue"`
	TotalPaid        int64                   `json:"totalPaid"`
	TotalOutstanding int64                   `json:"totalOutstanding"`
	CollectionRate   float64                 `json:"collectionRate"`
	ByStatus         map[string]StatusTotals `json:"byStatus"`
}

// GetPaymentOverviewDeps holds dependencies for GetPaymentOverview.
type GetPaymentOverviewDeps struct {
	PaymentStore PaymentStore
	Now          func() time.Time
}

// QueryGetPaymentOverview totals a club's billing by effective status.
// POST: ByStatus has an entry for every payment status, zero when unused
func QueryGetPaymentOverview(ctx context.Context, query GetPaymentOverviewQuery, deps GetPaymentOverviewDeps) (GetPaymentOverviewResult, error) {
	records, err := deps.PaymentStore.List(ctx, payment.ListFilter{
		ClubID: query.ClubID,
		Month:  query.Month,
		Year:   query.Year,
	})
	if err != nil {
		return GetPaymentOverviewResult{}, err
	}

	today := civil.Format(nowOr(deps.Now))
	res := GetPaymentOverviewResult{ByStatus: make(map[string]StatusTotals, len(domainPayment.ValidStatuses))}
	for _, s := range domainPayment.ValidStatuses {
		res.ByStatus[s] = StatusTotals{}
	}
	for i := range records {
		r := &records[i]
		status := r.EffectiveStatus(today)
		st := res.ByStatus[status]
		st.Count++
		st.AmountDue += r.AmountDue
		st.AmountPaid += r.AmountPaid
		st.Outstanding += r.Outstanding()
		res.ByStatus[status] = st

		res.Records++
		res.TotalDue += r.AmountDue
		res.TotalPaid += r.AmountPaid
		res.TotalOutstanding += r.Outstanding()
	}
	if res.TotalDue > 0 {
		res.CollectionRate = percent(res.TotalPaid, res.TotalDue)
	}
	return res, nil
}
