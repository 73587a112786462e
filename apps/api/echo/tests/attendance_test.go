package tests

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/kelasi/apps/api/echo"
	"github.com/trezcool/kelasi/core/attendance"
)

func assignBody(status string) []byte {
	return []byte(`{"status":"` + status + `"}`)
}

func recordStatuses(resp SessionResponse) map[string]attendance.Status {
	statuses := make(map[string]attendance.Status, len(resp.Records))
	for _, r := range resp.Records {
		statuses[r.StudentID] = r.Status
	}
	return statuses
}

func Test_attendanceApi_session(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, professor)
	lsn := app.backend.Lessons[0]
	path := "/v1/lessons/" + lsn.ID + "/attendance"
	studentPath := func(id string) string { return path + "/" + id }
	noSession := marchallObj(t, httpErr{Error: "no attendance session open for this lesson"})

	runHTTPTests(t, app, []httpTest{
		{
			name: "Staff required", method: http.MethodPost, path: path, token: getToken(t, app.conf, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "no session yet", method: http.MethodGet, path: path, token: token, wantCode: http.StatusNotFound, wantData: noSession},
		{
			name: "unknown lesson", method: http.MethodPost, path: "/v1/lessons/nope/attendance", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	})

	t.Run("open", func(t *testing.T) {
		rec := app.do(http.MethodPost, path, token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got SessionResponse
		unmarshal(t, rec, &got)
		assert.Equal(t, lsn.ID, got.Lesson.ID)
		assert.Equal(t, app.backend.UE.ID, got.AcademicUE.ID)
		assert.False(t, got.Complete)
		assert.False(t, got.Dirty)
		assert.Equal(t, []string{"s3", "s1", "s2"}, got.Missing)
		assert.Equal(t, []attendance.Status{attendance.StatusPresent, attendance.StatusRemote, attendance.StatusAbsent}, got.Assignable)
		require.Len(t, got.Records, 3)
		assert.Equal(t, "Ilunga Chantal", got.Records[0].StudentName)
		assert.Equal(t, "Non renseigné", got.Records[0].Label)
		assert.True(t, got.Records[0].IsPlaceholder())
	})

	runHTTPTests(t, app, []httpTest{
		{
			name: "status not allowed for professors", method: http.MethodPut, path: studentPath("s1"), body: assignBody("CM"), token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"status":"status not allowed for this role"}`),
		},
		{
			name: "unknown status", method: http.MethodPut, path: studentPath("s1"), body: assignBody("X"), token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"status":"status must be one of P, M, CM, A, ABANDON, D"}`),
		},
		{
			name: "student not enrolled", method: http.MethodPut, path: studentPath("s9"), body: assignBody("P"), token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student is not enrolled in this lesson"}),
		},
		{
			name: "sessions are per user", method: http.MethodGet, path: path, token: getToken(t, app.conf, educator),
			wantCode: http.StatusNotFound, wantData: noSession,
		},
		{name: "assign", method: http.MethodPut, path: studentPath("s1"), body: assignBody("P"), token: token, wantCode: http.StatusOK},
		{
			name: "incomplete submission", method: http.MethodPost, path: path + "/submit", token: token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"s3":"attendance status is required","s2":"attendance status is required"}`),
		},
	})
	assert.Equal(t, 0, app.backend.DB.Calls("UpsertAttendanceBatch"), "incomplete batches are not sent")

	t.Run("stage the rest", func(t *testing.T) {
		rec := app.do(http.MethodPut, studentPath("s2"), token, assignBody("absence non justifiée"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rec = app.do(http.MethodPut, studentPath("s3"), token, assignBody("m"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got SessionResponse
		unmarshal(t, rec, &got)
		assert.True(t, got.Complete)
		assert.True(t, got.Dirty)
		assert.Empty(t, got.Missing)
		assert.Equal(t, map[string]attendance.Status{
			"s1": attendance.StatusPresent,
			"s2": attendance.StatusAbsent,
			"s3": attendance.StatusRemote,
		}, recordStatuses(got))
		assert.Empty(t, app.backend.DB.AllRecords(), "nothing is sent before submit")
	})

	t.Run("failed submission keeps the staged records", func(t *testing.T) {
		app.backend.DB.FailNext(errors.New("timeout"))

		rec := app.do(http.MethodPost, path+"/submit", token)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadGateway,
			wantData: marchallObj(t, httpErr{Error: "upserting attendance batch: remote error: timeout"}),
		}, rec)

		rec = app.do(http.MethodGet, path, token)
		require.Equal(t, http.StatusOK, rec.Code)
		var got SessionResponse
		unmarshal(t, rec, &got)
		assert.True(t, got.Dirty)
		assert.True(t, got.Complete)
		assert.Empty(t, app.backend.DB.AllRecords())
	})

	t.Run("submit", func(t *testing.T) {
		rec := app.do(http.MethodPost, path+"/submit", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got SessionResponse
		unmarshal(t, rec, &got)
		assert.False(t, got.Dirty)
		for _, r := range got.Records {
			assert.NotEmpty(t, r.ID, "confirmed records carry their backend id")
		}
		assert.Len(t, app.backend.DB.AllRecords(), 3)
	})

	t.Run("resubmitting does not duplicate records", func(t *testing.T) {
		rec := app.do(http.MethodPost, path+"/submit", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Len(t, app.backend.DB.AllRecords(), 3)
	})

	t.Run("reopen loads the saved records", func(t *testing.T) {
		rec := app.do(http.MethodPost, path, getToken(t, app.conf, educator))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got SessionResponse
		unmarshal(t, rec, &got)
		assert.True(t, got.Complete)
		assert.Len(t, got.Assignable, 6)
		assert.Equal(t, attendance.StatusAbsent, recordStatuses(got)["s2"])
	})

	runHTTPTests(t, app, []httpTest{
		{name: "discard", method: http.MethodDelete, path: path, token: token, wantCode: http.StatusNoContent},
		{name: "discard (no session)", method: http.MethodDelete, path: path, token: token, wantCode: http.StatusNotFound, wantData: noSession},
	})
}

func Test_attendanceApi_summary(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, educator)
	lessons := app.backend.Lessons

	batch := []attendance.Record{
		{LessonID: lessons[0].ID, StudentID: "s1", Status: attendance.StatusAbsent},
		{LessonID: lessons[1].ID, StudentID: "s1", Status: attendance.StatusAbsent},
		{LessonID: lessons[0].ID, StudentID: "s2", Status: attendance.StatusPresent},
		{LessonID: lessons[1].ID, StudentID: "s2", Status: attendance.StatusAbsent},
		{LessonID: lessons[0].ID, StudentID: "s3", Status: attendance.StatusPresent},
		{LessonID: lessons[1].ID, StudentID: "s3", Status: attendance.StatusMedical},
	}
	_, err := app.backend.AttendanceRepository().UpsertAttendanceBatch(context.Background(), batch)
	require.NoError(t, err)

	path := "/v1/academic-ues/" + app.backend.UE.ID + "/attendance-summary"
	order := func(rec []SummaryRowResponse) []string {
		ids := make([]string, 0, len(rec))
		for _, row := range rec {
			ids = append(ids, row.Student.ID)
		}
		return ids
	}

	tests := []struct {
		ordering string
		want     []string
	}{
		{ordering: "", want: []string{"s3", "s1", "s2"}},
		{ordering: "-student", want: []string{"s2", "s1", "s3"}},
		{ordering: "-absences", want: []string{"s1", "s2", "s3"}},
		{ordering: "presence_rate,student", want: []string{"s1", "s3", "s2"}},
		{ordering: "-presence_rate,-student", want: []string{"s2", "s3", "s1"}},
	}
	for _, tt := range tests {
		t.Run("ordering="+tt.ordering, func(t *testing.T) {
			rec := app.do(http.MethodGet, path+"?ordering="+tt.ordering, token)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got []SummaryRowResponse
			unmarshal(t, rec, &got)
			assert.Equal(t, tt.want, order(got))
		})
	}

	t.Run("stats", func(t *testing.T) {
		rec := app.do(http.MethodGet, path, token)
		var got []SummaryRowResponse
		unmarshal(t, rec, &got)
		require.Len(t, got, 3)

		s1 := got[1]
		assert.Equal(t, "s1", s1.Student.ID)
		assert.Len(t, s1.Attendances, 3)
		assert.Equal(t, 3, s1.Stats.Lessons)
		assert.Equal(t, 2, s1.Stats.Recorded)
		assert.Equal(t, 2, s1.Stats.Absences)
		assert.Equal(t, 0.0, s1.Stats.PresenceRate)
	})

	runHTTPTests(t, app, []httpTest{
		{
			name: "Staff required", method: http.MethodGet, path: path, token: getToken(t, app.conf, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "unknown ordering", method: http.MethodGet, path: path + "?ordering=age", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"ordering":"cannot order by \"age\""}`),
		},
		{
			name: "unknown academic UE", method: http.MethodGet, path: "/v1/academic-ues/nope/attendance-summary", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	})
}
