package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"clubify/internal/application/apperr"
	"clubify/internal/domain/access"
	"clubify/internal/domain/account"
	"clubify/internal/domain/club"
	"clubify/internal/domain/coach"
	"clubify/internal/domain/fee"
	"clubify/internal/domain/player"
	"clubify/internal/domain/team"
)

// ClubStore persists clubs.
type ClubStore interface {
	Save(ctx context.Context, c club.Club) error
}

// TeamStore persists teams.
type TeamStore interface {
	GetByID(ctx context.Context, id string) (team.Team, error)
	Save(ctx context.Context, t team.Team) error
}

// PlayerStore persists players and their parent links.
type PlayerStore interface {
	GetByID(ctx context.Context, id string) (player.Player, error)
	Save(ctx context.Context, p player.Player) error
	LinkParent(ctx context.Context, link player.ParentLink) (bool, error)
}

// RosterStore persists team-player assignments.
type RosterStore interface {
	Assign(ctx context.Context, a player.Assignment) (bool, error)
	GetActive(ctx context.Context, teamID, playerID string) (player.Assignment, error)
	Save(ctx context.Context, a player.Assignment) error
}

// CoachStore persists coach assignments.
type CoachStore interface {
	Save(ctx context.Context, a coach.Assignment) error
}

// FeeStore appends fee versions.
type FeeStore interface {
	Insert(ctx context.Context, f fee.SubscriptionFee) error
}

// ClubSetupDeps holds dependencies for the club, team, player and roster orchestrators.
// Each operation uses only the stores it needs.
type ClubSetupDeps struct {
	Clubs    ClubStore
	Teams    TeamStore
	Players  PlayerStore
	Rosters  RosterStore
	Coaches  CoachStore
	Fees     FeeStore
	Accounts AccountReader
	Grants   GrantLister

	GenerateID func() string
	Now        func() time.Time
}

// CreateClubInput carries input for CreateClub.
type CreateClubInput struct {
	Name string
	City string
}

// ExecuteCreateClub registers a new tenant.
// PRE: caller is super_admin (checked by the handler)
// POST: Club persisted as active
func ExecuteCreateClub(ctx context.Context, input CreateClubInput, deps ClubSetupDeps) (club.Club, error) {
	c := club.Club{
		ID:        idFunc(deps.GenerateID)(),
		Name:      strings.TrimSpace(input.Name),
		City:      strings.TrimSpace(input.City),
		Active:    true,
		CreatedAt: nowOr(deps.Now),
	}
	if err := c.Validate(); err != nil {
		return club.Club{}, apperr.Invalid(err)
	}
	if err := deps.Clubs.Save(ctx, c); err != nil {
		return club.Club{}, apperr.Store("save club", err)
	}
	slog.Info("club_event", "event", "club_created", "club_id", c.ID, "name", c.Name)
	return c, nil
}

// SaveTeamInput carries input for SaveTeam. An empty TeamID creates a team.
type SaveTeamInput struct {
	TeamID   string
	ClubID   string
	Name     string
	AgeGroup string
	Active   *bool
}

// ExecuteSaveTeam creates a team in a club, or updates an existing one.
// PRE: ClubID is the club the caller administers
// POST: Team persisted; an update never moves a team to another club
func ExecuteSaveTeam(ctx context.Context, input SaveTeamInput, deps ClubSetupDeps) (team.Team, error) {
	t := team.Team{
		ID:        idFunc(deps.GenerateID)(),
		ClubID:    input.ClubID,
		Active:    true,
		CreatedAt: nowOr(deps.Now),
	}
	if input.TeamID != "" {
		existing, err := deps.Teams.GetByID(ctx, input.TeamID)
		if err != nil {
			return team.Team{}, lookupErr(err, "team", "get team")
		}
		if input.ClubID != "" && existing.ClubID != input.ClubID {
			return team.Team{}, apperr.NotFound("team")
		}
		t = existing
	}
	t.Name = strings.TrimSpace(input.Name)
	t.AgeGroup = strings.TrimSpace(input.AgeGroup)
	if input.Active != nil {
		t.Active = *input.Active
	}
	if err := t.Validate(); err != nil {
		return team.Team{}, apperr.Invalid(err)
	}
	if err := deps.Teams.Save(ctx, t); err != nil {
		return team.Team{}, apperr.Store("save team", err)
	}
	slog.Info("club_event", "event", "team_saved", "club_id", t.ClubID, "team_id", t.ID)
	return t, nil
}

// CreatePlayerInput carries input for CreatePlayer. A non-empty TeamID also
// puts the player on that team's roster.
type CreatePlayerInput struct {
	ClubID       string
	FirstName    string
	LastName     string
	DateOfBirth  string
	Position     string
	JerseyNumber int
	TeamID       string
}

// ExecuteCreatePlayer registers a player in a club.
// PRE: ClubID is the caller's club
// POST: Player persisted; assigned to TeamID when given
func ExecuteCreatePlayer(ctx context.Context, input CreatePlayerInput, deps ClubSetupDeps) (player.Player, error) {
	now := nowOr(deps.Now)
	p := player.Player{
		ID:           idFunc(deps.GenerateID)(),
		ClubID:       input.ClubID,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		DateOfBirth:  strings.TrimSpace(input.DateOfBirth),
		Position:     strings.ToLower(strings.TrimSpace(input.Position)),
		JerseyNumber: input.JerseyNumber,
		CreatedAt:    now,
	}
	if err := p.Validate(); err != nil {
		return player.Player{}, apperr.Invalid(err)
	}

	if input.TeamID != "" {
		if err := teamInClub(ctx, deps.Teams, input.TeamID, input.ClubID); err != nil {
			return player.Player{}, err
		}
	}

	if err := deps.Players.Save(ctx, p); err != nil {
		return player.Player{}, apperr.Store("save player", err)
	}
	if input.TeamID != "" {
		if _, err := assign(ctx, deps, input.TeamID, p.ID, now); err != nil {
			return player.Player{}, err
		}
	}

	slog.Info("club_event", "event", "player_created", "club_id", p.ClubID, "player_id", p.ID)
	return p, nil
}

// RosterInput names a player and a team.
type RosterInput struct {
	TeamID   string
	PlayerID string
}

// ExecuteAssignPlayer puts a player on a team.
// PRE: player and team belong to the same club
// POST: an active assignment exists; repeating the call is a no-op
func ExecuteAssignPlayer(ctx context.Context, input RosterInput, deps ClubSetupDeps) (player.Assignment, error) {
	t, err := deps.Teams.GetByID(ctx, input.TeamID)
	if err != nil {
		return player.Assignment{}, lookupErr(err, "team", "get team")
	}
	p, err := deps.Players.GetByID(ctx, input.PlayerID)
	if err != nil {
		return player.Assignment{}, lookupErr(err, "player", "get player")
	}
	if p.ClubID != t.ClubID {
		return player.Assignment{}, apperr.Validation("player and team belong to different clubs")
	}
	return assign(ctx, deps, t.ID, p.ID, nowOr(deps.Now))
}

func assign(ctx context.Context, deps ClubSetupDeps, teamID, playerID string, now time.Time) (player.Assignment, error) {
	a := player.Assignment{
		ID:       idFunc(deps.GenerateID)(),
		TeamID:   teamID,
		PlayerID: playerID,
		JoinedAt: now,
	}
	if err := a.Validate(); err != nil {
		return player.Assignment{}, apperr.Invalid(err)
	}
	created, err := deps.Rosters.Assign(ctx, a)
	if err != nil {
		return player.Assignment{}, apperr.Store("assign player", err)
	}
	if !created {
		existing, err := deps.Rosters.GetActive(ctx, teamID, playerID)
		if err != nil {
			return player.Assignment{}, apperr.Store("get assignment", err)
		}
		return existing, nil
	}
	slog.Info("club_event", "event", "player_assigned", "team_id", teamID, "player_id", playerID)
	return a, nil
}

// ExecuteRemovePlayer ends a player's active assignment on a team.
// PRE: the player is active on the team
// POST: LeftAt is set; payment history is untouched
func ExecuteRemovePlayer(ctx context.Context, input RosterInput, deps ClubSetupDeps) error {
	a, err := deps.Rosters.GetActive(ctx, input.TeamID, input.PlayerID)
	if err != nil {
		return lookupErr(err, "roster entry", "get assignment")
	}
	if err := a.Leave(nowOr(deps.Now)); err != nil {
		return apperr.Invalid(err)
	}
	if err := deps.Rosters.Save(ctx, a); err != nil {
		return apperr.Store("save assignment", err)
	}
	slog.Info("club_event", "event", "player_removed", "team_id", a.TeamID, "player_id", a.PlayerID)
	return nil
}

// LinkParentInput carries input for LinkParent.
type LinkParentInput struct {
	PlayerID    string
	AccountID   string
	ParentEmail string
}

// ExecuteLinkParent connects a parent account to a player.
// PRE: the account holds a parent grant in the player's club
// POST: the link exists; repeating the call is a no-op
func ExecuteLinkParent(ctx context.Context, input LinkParentInput, deps ClubSetupDeps) (bool, error) {
	p, err := deps.Players.GetByID(ctx, input.PlayerID)
	if err != nil {
		return false, lookupErr(err, "player", "get player")
	}
	acct, err := resolveAccount(ctx, deps.Accounts, input.AccountID, input.ParentEmail)
	if err != nil {
		return false, err
	}
	grants, err := deps.Grants.ListByAccount(ctx, acct.ID)
	if err != nil {
		return false, apperr.Store("list grants", err)
	}
	if !hasExactGrant(grants, access.RoleParent, p.ClubID) {
		return false, apperr.Validation("account does not hold a parent grant in this club")
	}

	linked, err := deps.Players.LinkParent(ctx, player.ParentLink{PlayerID: p.ID, AccountID: acct.ID})
	if err != nil {
		return false, apperr.Store("link parent", err)
	}
	if linked {
		slog.Info("club_event", "event", "parent_linked", "player_id", p.ID, "account_id", acct.ID)
	}
	return linked, nil
}

// AssignCoachInput carries input for AssignCoach.
type AssignCoachInput struct {
	TeamID     string
	AccountID  string
	CoachEmail string
	Role       string // head or assistant
}

// ExecuteAssignCoach puts a coach account in charge of a team.
// PRE: the account holds a coach grant in the team's club
// POST: assignment stored (role updated when it already existed)
func ExecuteAssignCoach(ctx context.Context, input AssignCoachInput, deps ClubSetupDeps) (coach.Assignment, error) {
	t, err := deps.Teams.GetByID(ctx, input.TeamID)
	if err != nil {
		return coach.Assignment{}, lookupErr(err, "team", "get team")
	}
	acct, err := resolveAccount(ctx, deps.Accounts, input.AccountID, input.CoachEmail)
	if err != nil {
		return coach.Assignment{}, err
	}
	grants, err := deps.Grants.ListByAccount(ctx, acct.ID)
	if err != nil {
		return coach.Assignment{}, apperr.Store("list grants", err)
	}
	if !hasExactGrant(grants, access.RoleCoach, t.ClubID) {
		return coach.Assignment{}, apperr.Validation("account does not hold a coach grant in this club")
	}

	a := coach.Assignment{
		ID:         idFunc(deps.GenerateID)(),
		TeamID:     t.ID,
		AccountID:  acct.ID,
		Role:       strings.ToLower(strings.TrimSpace(input.Role)),
		AssignedAt: nowOr(deps.Now),
	}
	if err := a.Validate(); err != nil {
		return coach.Assignment{}, apperr.Invalid(err)
	}
	if err := deps.Coaches.Save(ctx, a); err != nil {
		return coach.Assignment{}, apperr.Store("save coach assignment", err)
	}
	slog.Info("club_event", "event", "coach_assigned", "team_id", t.ID, "account_id", acct.ID, "role", a.Role)
	return a, nil
}

// AddFeeInput carries input for AddFee.
type AddFeeInput struct {
	TeamID        string
	Amount        int64
	EffectiveFrom string
}

// ExecuteAddFee appends a fee version to a team's history.
// PRE: team exists
// POST: fee stored; older versions are kept
func ExecuteAddFee(ctx context.Context, input AddFeeInput, deps ClubSetupDeps) (fee.SubscriptionFee, error) {
	if _, err := deps.Teams.GetByID(ctx, input.TeamID); err != nil {
		return fee.SubscriptionFee{}, lookupErr(err, "team", "get team")
	}
	f := fee.SubscriptionFee{
		ID:            idFunc(deps.GenerateID)(),
		TeamID:        input.TeamID,
		Amount:        input.Amount,
		EffectiveFrom: strings.TrimSpace(input.EffectiveFrom),
		CreatedAt:     nowOr(deps.Now),
	}
	if err := f.Validate(); err != nil {
		return fee.SubscriptionFee{}, apperr.Invalid(err)
	}
	if err := deps.Fees.Insert(ctx, f); err != nil {
		return fee.SubscriptionFee{}, apperr.Store("insert fee", err)
	}
	slog.Info("payment_event", "event", "fee_added", "team_id", f.TeamID, "amount", f.Amount, "effective_from", f.EffectiveFrom)
	return f, nil
}

func teamInClub(ctx context.Context, teams TeamStore, teamID, clubID string) error {
	t, err := teams.GetByID(ctx, teamID)
	if err != nil {
		return lookupErr(err, "team", "get team")
	}
	if t.ClubID != clubID {
		return apperr.NotFound("team")
	}
	return nil
}

func resolveAccount(ctx context.Context, accounts AccountReader, id, email string) (account.Account, error) {
	var (
		a   account.Account
		err error
	)
	switch {
	case id != "":
		a, err = accounts.GetByID(ctx, id)
	case email != "":
		a, err = accounts.GetByEmail(ctx, account.NormalizeEmail(email))
	default:
		return account.Account{}, apperr.Validation("account id or email is required")
	}
	if err != nil {
		return account.Account{}, lookupErr(err, "account", "get account")
	}
	return a, nil
}

// hasExactGrant reports whether grants include role in clubID, ignoring
// super_admin; used to check what an account is, not what it may do.
func hasExactGrant(grants []access.Grant, role access.Role, clubID string) bool {
	for _, g := range grants {
		if g.Role == role && g.ClubID == clubID {
			return true
		}
	}
	return false
}
