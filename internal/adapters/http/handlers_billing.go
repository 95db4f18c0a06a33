package web

import (
	"net/http"

	"github.com/google/uuid"

	"clubify/internal/application/apperr"
	"clubify/internal/application/listutil"
	"clubify/internal/application/orchestrators"
	"clubify/internal/application/projections"
	"clubify/internal/domain/access"
)

// --- Fees ---

// handleListFees returns a team's fee history, newest first
// (GET /api/teams/{teamID}/fees).
func handleListFees(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleClubAdmin)
	if !ok {
		return
	}
	fees, err := stores.FeeStore.ListByTeam(r.Context(), t.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	out := make([]feeDTO, 0, len(fees))
	for _, f := range fees {
		out = append(out, toFeeDTO(f))
	}
	writeJSON(w, http.StatusOK, out)
}

type addFeeRequest struct {
	Amount        int64  `json:"amount" validate:"gt=0"`
	EffectiveFrom string `json:"effectiveFrom" validate:"required,datetime=2006-01-02"`
}

// handleAddFee appends a fee version (POST /api/teams/{teamID}/fees).
func handleAddFee(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleClubAdmin)
	if !ok {
		return
	}
	var req addFeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := orchestrators.ExecuteAddFee(r.Context(), orchestrators.AddFeeInput{
		TeamID:        t.ID,
		Amount:        req.Amount,
		EffectiveFrom: req.EffectiveFrom,
	}, clubSetupDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFeeDTO(f))
}

// --- Payments ---

type generatePaymentsRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// handleGeneratePayments bills every active player for a month
// (POST /api/clubs/{clubID}/payments/generate). An omitted period means the
// current month.
func handleGeneratePayments(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	c, ok := requireRole(w, r, access.RoleClubAdmin, clubID)
	if !ok {
		return
	}
	var req generatePaymentsRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Month == 0 && req.Year == 0 {
		now := clock()
		req.Month, req.Year = int(now.Month()), now.Year()
	}

	res, err := orchestrators.ExecuteGeneratePayments(r.Context(), orchestrators.GeneratePaymentsInput{
		ClubID:     clubID,
		Month:      req.Month,
		Year:       req.Year,
		ActorID:    c.AccountID,
		ActorEmail: c.Email,
	}, generatePaymentsDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func generatePaymentsDeps() orchestrators.GeneratePaymentsDeps {
	return orchestrators.GeneratePaymentsDeps{
		Clubs:      stores.ClubStore,
		Teams:      stores.TeamStore,
		Rosters:    stores.RosterStore,
		Fees:       stores.FeeStore,
		Payments:   stores.PaymentStore,
		Discounts:  discounts,
		Audit:      stores.AuditStore,
		GenerateID: uuid.NewString,
		Now:        clock,
	}
}

// paymentListQuery reads the shared list filters: status, team_id, month,
// year and paging.
func paymentListQuery(r *http.Request) (projections.GetPaymentListQuery, error) {
	params := listutil.ParseListParams(r.URL.Query(), []string{"status", "team_id", "month", "year"})
	q := projections.GetPaymentListQuery{
		TeamID: params.Get("team_id"),
		Status: params.Get("status"),
		Page:   params.PageParams,
	}
	var err error
	if q.Month, _, err = params.Int("month"); err != nil {
		return q, apperr.Validation("month must be a number")
	}
	if q.Year, _, err = params.Int("year"); err != nil {
		return q, apperr.Validation("year must be a number")
	}
	return q, nil
}

func paymentListDeps() projections.GetPaymentListDeps {
	return projections.GetPaymentListDeps{
		PaymentStore: stores.PaymentStore,
		PlayerStore:  stores.PlayerStore,
		TeamStore:    stores.TeamStore,
		Now:          clock,
	}
}

// handleListPayments lists a club's payment records with status derived for
// today (GET /api/clubs/{clubID}/payments).
func handleListPayments(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	if _, ok := requireRole(w, r, access.RoleClubAdmin, clubID); !ok {
		return
	}
	q, err := paymentListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q.ClubID = clubID
	res, err := projections.QueryGetPaymentList(r.Context(), q, paymentListDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handlePaymentOverview totals a club's billing by status
// (GET /api/clubs/{clubID}/payments/overview?month=&year=).
func handlePaymentOverview(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	if _, ok := requireRole(w, r, access.RoleClubAdmin, clubID); !ok {
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := projections.QueryGetPaymentOverview(r.Context(), projections.GetPaymentOverviewQuery{
		ClubID: clubID,
		Month:  month,
		Year:   year,
	}, projections.GetPaymentOverviewDeps{PaymentStore: stores.PaymentStore, Now: clock})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type recordPaymentRequest struct {
	Amount int64  `json:"amount" validate:"gt=0"`
	Notes  string `json:"notes"`
}

// handleRecordPayment applies money received to a bill
// (POST /api/payments/{paymentID}/record).
func handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	rec, c, ok := requirePaymentRole(w, r, access.RoleClubAdmin)
	if !ok {
		return
	}
	var req recordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := orchestrators.ExecuteRecordPayment(r.Context(), orchestrators.RecordPaymentInput{
		PaymentID:  rec.ID,
		Amount:     req.Amount,
		Notes:      req.Notes,
		ActorID:    c.AccountID,
		ActorEmail: c.Email,
	}, orchestrators.RecordPaymentDeps{
		Payments: stores.PaymentStore,
		Teams:    stores.TeamStore,
		Audit:    stores.AuditStore,
		Now:      clock,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(updated, civilToday()))
}

// handleSendReminders emails parents about overdue bills
// (POST /api/clubs/{clubID}/payments/reminders).
func handleSendReminders(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	c, ok := requireRole(w, r, access.RoleClubAdmin, clubID)
	if !ok {
		return
	}
	res, err := orchestrators.ExecuteSendPaymentReminders(r.Context(), orchestrators.SendPaymentRemindersInput{
		ClubID:     clubID,
		ActorID:    c.AccountID,
		ActorEmail: c.Email,
	}, remindersDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func remindersDeps() orchestrators.SendPaymentRemindersDeps {
	return orchestrators.SendPaymentRemindersDeps{
		Clubs:      stores.ClubStore,
		Teams:      stores.TeamStore,
		Payments:   stores.PaymentStore,
		Players:    stores.PlayerStore,
		Accounts:   stores.AccountStore,
		Sender:     emailSender,
		Outbox:     stores.OutboxStore,
		Audit:      stores.AuditStore,
		From:       emailFrom,
		GenerateID: uuid.NewString,
		Now:        clock,
	}
}

// handlePlayerPayments lists one player's bills (GET /api/players/{playerID}/payments).
// Club admins see any player in their club; a parent sees only their own
// linked children.
func handlePlayerPayments(w http.ResponseWriter, r *http.Request) {
	c, ok := loadMember(w, r, access.RoleParent)
	if !ok {
		return
	}
	p, err := stores.PlayerStore.GetByID(r.Context(), r.PathValue("playerID"))
	if !lookup(w, r, err, "player") {
		return
	}
	if !access.HasMinimumRole(c.Grants, access.RoleClubAdmin, p.ClubID) {
		if !access.HasRole(c.Grants, access.RoleParent, p.ClubID).Allowed() {
			denied(w, r, c, string(access.RoleParent), p.ClubID)
			return
		}
		links, err := stores.PlayerStore.ListParentLinks(r.Context(), []string{p.ID})
		if err != nil {
			internalError(w, r, err)
			return
		}
		linked := false
		for _, l := range links {
			if l.AccountID == c.AccountID {
				linked = true
				break
			}
		}
		if !linked {
			denied(w, r, c, "linked parent", p.ClubID)
			return
		}
	}

	q, err := paymentListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q.ClubID = p.ClubID
	q.PlayerIDs = []string{p.ID}
	res, err := projections.QueryGetPaymentList(r.Context(), q, paymentListDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
