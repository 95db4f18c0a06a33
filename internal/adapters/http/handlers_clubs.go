package web

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"clubify/internal/application/apperr"
	"clubify/internal/application/listutil"
	"clubify/internal/application/orchestrators"
	"clubify/internal/application/projections"
	"clubify/internal/domain/access"
	"clubify/internal/domain/club"
)

// maxImportBytes bounds a player CSV upload.
const maxImportBytes = 5 << 20

func clubSetupDeps() orchestrators.ClubSetupDeps {
	return orchestrators.ClubSetupDeps{
		Clubs:      stores.ClubStore,
		Teams:      stores.TeamStore,
		Players:    stores.PlayerStore,
		Rosters:    stores.RosterStore,
		Coaches:    stores.CoachStore,
		Fees:       stores.FeeStore,
		Accounts:   stores.AccountStore,
		Grants:     stores.GrantStore,
		GenerateID: uuid.NewString,
		Now:        clock,
	}
}

// --- Clubs ---

// handleListClubs lists the clubs the caller holds a grant in; super admins
// see every club (GET /api/clubs).
func handleListClubs(w http.ResponseWriter, r *http.Request) {
	c, ok := loadCaller(w, r)
	if !ok {
		return
	}
	var (
		clubs []club.Club
		err   error
	)
	if access.IsSuperAdmin(c.Grants) {
		clubs, err = stores.ClubStore.List(r.Context())
	} else if ids := access.ClubsFor(c.Grants); len(ids) > 0 {
		clubs, err = stores.ClubStore.ListByIDs(r.Context(), ids)
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	out := make([]clubDTO, 0, len(clubs))
	for _, cl := range clubs {
		out = append(out, toClubDTO(cl))
	}
	writeJSON(w, http.StatusOK, out)
}

type createClubRequest struct {
	Name string `json:"name" validate:"required"`
	City string `json:"city"`
}

// handleCreateClub registers a tenant (POST /api/clubs, super_admin).
func handleCreateClub(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSuperAdmin(w, r); !ok {
		return
	}
	var req createClubRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cl, err := orchestrators.ExecuteCreateClub(r.Context(), orchestrators.CreateClubInput{
		Name: req.Name,
		City: req.City,
	}, clubSetupDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClubDTO(cl))
}

type clubResponse struct {
	clubDTO
	Role string `json:"role"` // caller's highest role in the club
}

// handleGetClub returns one club (GET /api/clubs/{clubID}).
func handleGetClub(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	c, ok := requireRole(w, r, access.RolePlayer, clubID)
	if !ok {
		return
	}
	cl, err := stores.ClubStore.GetByID(r.Context(), clubID)
	if !lookup(w, r, err, "club") {
		return
	}
	writeJSON(w, http.StatusOK, clubResponse{
		clubDTO: toClubDTO(cl),
		Role:    string(access.HighestRoleIn(c.Grants, clubID)),
	})
}

// --- Grants ---

type clubGrantDTO struct {
	grantDTO
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// handleListGrants lists the grants scoped to a club with their account
// names (GET /api/clubs/{clubID}/grants).
func handleListGrants(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	if _, ok := requireRole(w, r, access.RoleClubAdmin, clubID); !ok {
		return
	}
	grants, err := stores.GrantStore.ListByClub(r.Context(), clubID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	ids := make([]string, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.AccountID)
	}
	accounts, err := stores.AccountStore.ListByIDs(r.Context(), ids)
	if err != nil {
		internalError(w, r, err)
		return
	}
	byID := make(map[string]int, len(accounts))
	for i, a := range accounts {
		byID[a.ID] = i
	}
	out := make([]clubGrantDTO, 0, len(grants))
	for _, g := range grants {
		d := clubGrantDTO{grantDTO: toGrantDTO(g)}
		if i, ok := byID[g.AccountID]; ok {
			d.Email = accounts[i].Email
			d.FullName = accounts[i].FullName
		}
		out = append(out, d)
	}
	writeJSON(w, http.StatusOK, out)
}

type assignGrantRequest struct {
	AccountID string `json:"accountId" validate:"required_without=Email"`
	Email     string `json:"email" validate:"omitempty,email"`
	Role      string `json:"role" validate:"required"`
}

func grantDeps() orchestrators.GrantDeps {
	return orchestrators.GrantDeps{
		Accounts:   stores.AccountStore,
		Grants:     stores.GrantStore,
		Audit:      stores.AuditStore,
		GenerateID: uuid.NewString,
		Now:        clock,
	}
}

// handleAssignGrant gives an account a role in the club
// (POST /api/clubs/{clubID}/grants). Which roles the caller may hand out is
// decided by the orchestrator.
func handleAssignGrant(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	c, ok := requireRole(w, r, access.RoleClubAdmin, clubID)
	if !ok {
		return
	}
	var req assignGrantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := orchestrators.ExecuteAssignGrant(r.Context(), orchestrators.AssignGrantInput{
		CallerGrants: c.Grants,
		ActorID:      c.AccountID,
		ActorEmail:   c.Email,
		ClubID:       clubID,
		AccountID:    req.AccountID,
		Email:        req.Email,
		Role:         req.Role,
	}, grantDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if !res.Created {
		status = http.StatusOK
	}
	writeJSON(w, status, toGrantDTO(res.Grant))
}

// handleRevokeGrant removes a grant (DELETE /api/clubs/{clubID}/grants/{grantID}).
func handleRevokeGrant(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	c, ok := requireRole(w, r, access.RoleClubAdmin, clubID)
	if !ok {
		return
	}
	err := orchestrators.ExecuteRevokeGrant(r.Context(), orchestrators.RevokeGrantInput{
		CallerGrants: c.Grants,
		ActorID:      c.AccountID,
		ActorEmail:   c.Email,
		ClubID:       clubID,
		GrantID:      r.PathValue("grantID"),
	}, grantDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// handleRevokeSuperAdminGrant removes an unscoped super_admin grant
// (DELETE /api/admin/grants/{grantID}).
func handleRevokeSuperAdminGrant(w http.ResponseWriter, r *http.Request) {
	c, ok := requireSuperAdmin(w, r)
	if !ok {
		return
	}
	err := orchestrators.ExecuteRevokeGrant(r.Context(), orchestrators.RevokeGrantInput{
		CallerGrants: c.Grants,
		ActorID:      c.AccountID,
		ActorEmail:   c.Email,
		GrantID:      r.PathValue("grantID"),
	}, grantDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// --- Teams ---

// handleListTeams lists a club's teams (GET /api/clubs/{clubID}/teams).
func handleListTeams(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	if _, ok := requireRole(w, r, access.RoleCoach, clubID); !ok {
		return
	}
	teams, err := stores.TeamStore.ListByClub(r.Context(), clubID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	out := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamDTO(t))
	}
	writeJSON(w, http.StatusOK, out)
}

type saveTeamRequest struct {
	Name     string `json:"name" validate:"required"`
	AgeGroup string `json:"ageGroup"`
	Active   *bool  `json:"active"`
}

// handleCreateTeam adds a team to a club (POST /api/clubs/{clubID}/teams).
func handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	if _, ok := requireRole(w, r, access.RoleClubAdmin, clubID); !ok {
		return
	}
	var req saveTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := orchestrators.ExecuteSaveTeam(r.Context(), orchestrators.SaveTeamInput{
		ClubID:   clubID,
		Name:     req.Name,
		AgeGroup: req.AgeGroup,
		Active:   req.Active,
	}, clubSetupDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeamDTO(t))
}

// handleUpdateTeam renames or (de)activates a team (PUT /api/teams/{teamID}).
func handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	existing, _, ok := requireTeamRole(w, r, access.RoleClubAdmin)
	if !ok {
		return
	}
	var req saveTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := orchestrators.ExecuteSaveTeam(r.Context(), orchestrators.SaveTeamInput{
		TeamID:   existing.ID,
		ClubID:   existing.ClubID,
		Name:     req.Name,
		AgeGroup: req.AgeGroup,
		Active:   req.Active,
	}, clubSetupDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamDTO(t))
}

// --- Players ---

// handleListPlayers pages through a club's players, optionally limited to a
// team (GET /api/clubs/{clubID}/players?team_id=&q=&page=&per_page=).
func handleListPlayers(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	if _, ok := requireRole(w, r, access.RoleCoach, clubID); !ok {
		return
	}
	params := listutil.ParseListParams(r.URL.Query(), []string{"team_id"})
	res, err := projections.QueryGetPlayerList(r.Context(), projections.GetPlayerListQuery{
		ClubID: clubID,
		TeamID: params.Get("team_id"),
		Search: params.Search,
		Page:   params.PageParams,
	}, projections.GetPlayerListDeps{PlayerStore: stores.PlayerStore})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type createPlayerRequest struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	DateOfBirth  string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Position     string `json:"position"`
	JerseyNumber int    `json:"jerseyNumber" validate:"gte=0,lte=99"`
	TeamID       string `json:"teamId"`
}

// handleCreatePlayer registers a player, optionally on a team
// (POST /api/clubs/{clubID}/players).
func handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	if _, ok := requireRole(w, r, access.RoleClubAdmin, clubID); !ok {
		return
	}
	var req createPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := orchestrators.ExecuteCreatePlayer(r.Context(), orchestrators.CreatePlayerInput{
		ClubID:       clubID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DateOfBirth:  req.DateOfBirth,
		Position:     req.Position,
		JerseyNumber: req.JerseyNumber,
		TeamID:       req.TeamID,
	}, clubSetupDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlayerDTO(p))
}

// handleImportPlayers bulk-creates players from CSV
// (POST /api/clubs/{clubID}/players/import?dry_run=true). The CSV is either the
// raw request body or the "file" field of a multipart form.
func handleImportPlayers(w http.ResponseWriter, r *http.Request) {
	clubID := r.PathValue("clubID")
	c, ok := requireRole(w, r, access.RoleClubAdmin, clubID)
	if !ok {
		return
	}
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	var body io.Reader = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			writeError(w, r, apperr.Validation("invalid upload: "+err.Error()))
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, apperr.Validation("file is required"))
			return
		}
		defer file.Close()
		body = file
	}

	res, err := orchestrators.ExecuteImportPlayers(r.Context(), orchestrators.ImportPlayersInput{
		ClubID:     clubID,
		Reader:     body,
		DryRun:     dryRun,
		ActorID:    c.AccountID,
		ActorEmail: c.Email,
	}, orchestrators.ImportPlayersDeps{
		Teams:      stores.TeamStore,
		Players:    stores.PlayerStore,
		Rosters:    stores.RosterStore,
		Audit:      stores.AuditStore,
		GenerateID: uuid.NewString,
		Now:        clock,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- Rosters ---

// handleTeamRoster lists a team's active players (GET /api/teams/{teamID}/players).
func handleTeamRoster(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleCoach)
	if !ok {
		return
	}
	roster, err := projections.QueryGetTeamRoster(r.Context(), t.ID, projections.GetTeamRosterDeps{
		RosterStore: stores.RosterStore,
		PlayerStore: stores.PlayerStore,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

type assignPlayerRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
}

// handleAssignPlayer puts a player on a team (POST /api/teams/{teamID}/players).
func handleAssignPlayer(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleClubAdmin)
	if !ok {
		return
	}
	var req assignPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := orchestrators.ExecuteAssignPlayer(r.Context(), orchestrators.RosterInput{
		TeamID:   t.ID,
		PlayerID: req.PlayerID,
	}, clubSetupDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssignmentDTO(a))
}

// handleRemovePlayer ends a player's assignment
// (DELETE /api/teams/{teamID}/players/{playerID}).
func handleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleClubAdmin)
	if !ok {
		return
	}
	err := orchestrators.ExecuteRemovePlayer(r.Context(), orchestrators.RosterInput{
		TeamID:   t.ID,
		PlayerID: r.PathValue("playerID"),
	}, clubSetupDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

type linkParentRequest struct {
	AccountID string `json:"accountId" validate:"required_without=Email"`
	Email     string `json:"email" validate:"omitempty,email"`
}

// handleLinkParent connects a parent account to a player
// (POST /api/players/{playerID}/parents).
func handleLinkParent(w http.ResponseWriter, r *http.Request) {
	p, _, ok := requirePlayerRole(w, r, access.RoleClubAdmin)
	if !ok {
		return
	}
	var req linkParentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	linked, err := orchestrators.ExecuteLinkParent(r.Context(), orchestrators.LinkParentInput{
		PlayerID:    p.ID,
		AccountID:   req.AccountID,
		ParentEmail: req.Email,
	}, clubSetupDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if !linked {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]bool{"linked": linked})
}

// --- Coaches ---

// handleListCoaches lists a team's coaches (GET /api/teams/{teamID}/coaches).
func handleListCoaches(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleCoach)
	if !ok {
		return
	}
	assignments, err := stores.CoachStore.ListByTeam(r.Context(), t.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.AccountID)
	}
	accounts, err := stores.AccountStore.ListByIDs(r.Context(), ids)
	if err != nil {
		internalError(w, r, err)
		return
	}
	out := make([]coachDTO, 0, len(assignments))
	for _, a := range assignments {
		d := toCoachDTO(a)
		for _, acct := range accounts {
			if acct.ID == a.AccountID {
				d.Email, d.FullName = acct.Email, acct.FullName
				break
			}
		}
		out = append(out, d)
	}
	writeJSON(w, http.StatusOK, out)
}

type assignCoachRequest struct {
	AccountID string `json:"accountId" validate:"required_without=Email"`
	Email     string `json:"email" validate:"omitempty,email"`
	Role      string `json:"role" validate:"required,oneof=head assistant"`
}

// handleAssignCoach puts a coach in charge of a team (POST /api/teams/{teamID}/coaches).
func handleAssignCoach(w http.ResponseWriter, r *http.Request) {
	t, _, ok := requireTeamRole(w, r, access.RoleClubAdmin)
	if !ok {
		return
	}
	var req assignCoachRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := orchestrators.ExecuteAssignCoach(r.Context(), orchestrators.AssignCoachInput{
		TeamID:     t.ID,
		AccountID:  req.AccountID,
		CoachEmail: req.Email,
		Role:       req.Role,
	}, clubSetupDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCoachDTO(a))
}
