package persistence

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/stafflink/backoffice/modules/crm/domain/entities/meeting"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/repo"
)

const (
	meetingFindQuery = `
		SELECT m.id, m.tenant_id, m.title, m.client_name, m.lead_id, m.location,
			m.starts_at, m.ends_at, m.organizer_id, m.status, m.notes,
			m.created_at, m.updated_at
		FROM client_meetings m`

	meetingCountQuery = `SELECT COUNT(*) FROM client_meetings m`

	meetingInsertQuery = `
		INSERT INTO client_meetings (tenant_id, title, client_name, lead_id, location, starts_at, ends_at, organizer_id, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	meetingUpdateQuery = `
		UPDATE client_meetings
		SET title = $3, client_name = $4, lead_id = $5, location = $6,
			starts_at = $7, ends_at = $8, notes = $9, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	meetingUpdateStatusQuery = `UPDATE client_meetings SET status = $3, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`

	meetingOverlapQuery = `
		SELECT EXISTS (
			SELECT 1 FROM client_meetings m
			WHERE m.tenant_id = $1 AND m.organizer_id = $2 AND m.status = 'scheduled'
				AND m.starts_at < $4 AND m.ends_at > $3
				AND m.id <> $5
		)`

	meetingDeleteQuery = `DELETE FROM client_meetings WHERE id = $1 AND tenant_id = $2`

	attendeeFindQuery = `
		SELECT a.meeting_id, a.user_id FROM meeting_attendees a
		WHERE a.meeting_id = ANY ($1)
		ORDER BY a.user_id`

	attendeeInsertQuery = `INSERT INTO meeting_attendees (meeting_id, user_id) VALUES ($1, $2)`

	attendeeDeleteAllQuery = `DELETE FROM meeting_attendees WHERE meeting_id = $1`
)

type PgMeetingRepository struct{}

func NewMeetingRepository() meeting.Repository {
	return &PgMeetingRepository{}
}

func (g *PgMeetingRepository) queryMeetings(ctx context.Context, query string, args ...interface{}) ([]meeting.Meeting, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query meetings")
	}
	defer rows.Close()

	meetings := make([]meeting.Meeting, 0)
	for rows.Next() {
		var m meeting.Meeting
		var leadID sql.NullInt64
		var location, notes sql.NullString
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.Title,
			&m.ClientName,
			&leadID,
			&location,
			&m.StartsAt,
			&m.EndsAt,
			&m.OrganizerID,
			&m.Status,
			&notes,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan meeting")
		}
		m.LeadID = nullInt64ToUintPtr(leadID)
		m.Location = location.String
		m.Notes = notes.String
		m.AttendeeIDs = make([]uint, 0)
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := g.loadAttendees(ctx, meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

func (g *PgMeetingRepository) loadAttendees(ctx context.Context, meetings []meeting.Meeting) error {
	if len(meetings) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(meetings))
	byID := make(map[uint]*meeting.Meeting, len(meetings))
	for i := range meetings {
		ids = append(ids, int64(meetings[i].ID))
		byID[meetings[i].ID] = &meetings[i]
	}
	rows, err := tx.Query(ctx, attendeeFindQuery, ids)
	if err != nil {
		return errors.Wrap(err, "failed to query meeting attendees")
	}
	defer rows.Close()
	for rows.Next() {
		var meetingID, userID uint
		if err := rows.Scan(&meetingID, &userID); err != nil {
			return errors.Wrap(err, "failed to scan meeting attendee")
		}
		if m, ok := byID[meetingID]; ok {
			m.AttendeeIDs = append(m.AttendeeIDs, userID)
		}
	}
	return rows.Err()
}

func (g *PgMeetingRepository) buildFilters(ctx context.Context, params *meeting.FindParams) (string, string, []interface{}, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return "", "", nil, err
	}
	join := ""
	where := []string{"m.tenant_id = $1"}
	args := []interface{}{tenantID.String()}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, "m.status = $"+strconv.Itoa(len(args)))
	}
	if params.OrganizerID != nil {
		args = append(args, *params.OrganizerID)
		where = append(where, "m.organizer_id = $"+strconv.Itoa(len(args)))
	}
	if params.AttendeeID != nil {
		join = "INNER JOIN meeting_attendees ma ON ma.meeting_id = m.id"
		args = append(args, *params.AttendeeID)
		where = append(where, "ma.user_id = $"+strconv.Itoa(len(args)))
	}
	if params.From != nil {
		args = append(args, *params.From)
		where = append(where, "m.starts_at >= $"+strconv.Itoa(len(args)))
	}
	if params.To != nil {
		args = append(args, *params.To)
		where = append(where, "m.starts_at <= $"+strconv.Itoa(len(args)))
	}
	if params.Search != "" {
		where = append(where, repo.ILike(len(args)+1, "m.title", "m.client_name"))
		args = append(args, "%"+params.Search+"%")
	}
	return join, repo.JoinWhere(where...), args, nil
}

func (g *PgMeetingRepository) GetPaginated(ctx context.Context, params *meeting.FindParams) ([]meeting.Meeting, int64, error) {
	join, whereClause, args, err := g.buildFilters(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := tx.QueryRow(ctx, repo.Join(meetingCountQuery, join, whereClause), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count meetings")
	}
	query := repo.Join(
		meetingFindQuery,
		join,
		whereClause,
		"ORDER BY m.starts_at",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	meetings, err := g.queryMeetings(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return meetings, total, nil
}

func (g *PgMeetingRepository) GetByID(ctx context.Context, id uint) (*meeting.Meeting, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	meetings, err := g.queryMeetings(ctx, meetingFindQuery+" WHERE m.id = $1 AND m.tenant_id = $2", id, tenantID.String())
	if err != nil {
		return nil, err
	}
	if len(meetings) == 0 {
		return nil, meeting.ErrNotFound
	}
	return &meetings[0], nil
}

func (g *PgMeetingRepository) Create(ctx context.Context, m *meeting.Meeting) (*meeting.Meeting, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var id uint
	err = tx.QueryRow(
		ctx,
		meetingInsertQuery,
		tenantID.String(),
		m.Title,
		m.ClientName,
		uintPtrToNullInt64(m.LeadID),
		stringToNullString(m.Location),
		m.StartsAt,
		m.EndsAt,
		m.OrganizerID,
		string(m.Status),
		stringToNullString(m.Notes),
	).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create meeting")
	}
	for _, userID := range m.AttendeeIDs {
		if _, err := tx.Exec(ctx, attendeeInsertQuery, id, userID); err != nil {
			return nil, errors.Wrap(err, "failed to add meeting attendee")
		}
	}
	return g.GetByID(ctx, id)
}

func (g *PgMeetingRepository) Update(ctx context.Context, m *meeting.Meeting) (*meeting.Meeting, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tag, err := tx.Exec(
		ctx,
		meetingUpdateQuery,
		m.ID,
		tenantID.String(),
		m.Title,
		m.ClientName,
		uintPtrToNullInt64(m.LeadID),
		stringToNullString(m.Location),
		m.StartsAt,
		m.EndsAt,
		stringToNullString(m.Notes),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update meeting")
	}
	if tag.RowsAffected() == 0 {
		return nil, meeting.ErrNotFound
	}
	if _, err := tx.Exec(ctx, attendeeDeleteAllQuery, m.ID); err != nil {
		return nil, errors.Wrap(err, "failed to reset meeting attendees")
	}
	for _, userID := range m.AttendeeIDs {
		if _, err := tx.Exec(ctx, attendeeInsertQuery, m.ID, userID); err != nil {
			return nil, errors.Wrap(err, "failed to add meeting attendee")
		}
	}
	return g.GetByID(ctx, m.ID)
}

func (g *PgMeetingRepository) UpdateStatus(ctx context.Context, id uint, status meeting.Status) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, meetingUpdateStatusQuery, id, tenantID.String(), string(status))
	if err != nil {
		return errors.Wrap(err, "failed to update meeting status")
	}
	if tag.RowsAffected() == 0 {
		return meeting.ErrNotFound
	}
	return nil
}

func (g *PgMeetingRepository) HasOverlap(ctx context.Context, organizerID uint, startsAt, endsAt time.Time, excludeID uint) (bool, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return false, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx, meetingOverlapQuery, tenantID.String(), organizerID, startsAt, endsAt, excludeID).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check meeting overlap")
	}
	return exists, nil
}

func (g *PgMeetingRepository) Delete(ctx context.Context, id uint) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, meetingDeleteQuery, id, tenantID.String())
	if err != nil {
		return errors.Wrap(err, "failed to delete meeting")
	}
	if tag.RowsAffected() == 0 {
		return meeting.ErrNotFound
	}
	return nil
}
