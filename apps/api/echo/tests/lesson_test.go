package tests

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/kelasi/apps/api/echo"
	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/lesson"
)

func statusBody(status, date string) []byte {
	if date == "" {
		return []byte(`{"status":"` + status + `"}`)
	}
	return []byte(`{"status":"` + status + `","date":"` + date + `"}`)
}

func Test_lessonApi_retrieve(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, student)
	lsn := app.backend.Lessons[0]

	runHTTPTests(t, app, []httpTest{
		{
			name: "lesson", method: http.MethodGet, path: "/v1/lessons/" + lsn.ID, token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, NewLessonResponse(lsn)),
		},
		{
			name: "lesson (unknown)", method: http.MethodGet, path: "/v1/lessons/nope", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "academic UE", method: http.MethodGet, path: "/v1/academic-ues/" + app.backend.UE.ID, token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, app.backend.UE),
		},
		{
			name: "academic UE lessons", method: http.MethodGet, path: "/v1/academic-ues/" + app.backend.UE.ID + "/lessons", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, NewLessonListResponse(app.backend.Lessons)),
		},
	})
}

func Test_lessonApi_changeStatus(t *testing.T) {
	app := setup(t)
	token := getToken(t, app.conf, professor)
	lessons := app.backend.Lessons
	path := func(id string) string { return "/v1/lessons/" + id + "/status" }

	runHTTPTests(t, app, []httpTest{
		{
			name: "Auth required", method: http.MethodPatch, path: path(lessons[0].ID), body: statusBody("COMPLETED", ""),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Staff required", method: http.MethodPatch, path: path(lessons[0].ID), body: statusBody("COMPLETED", ""),
			token: getToken(t, app.conf, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "status required", method: http.MethodPatch, path: path(lessons[0].ID), body: []byte(`{}`), token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"status":"this field is required"}`),
		},
		{
			name: "unknown status", method: http.MethodPatch, path: path(lessons[0].ID), body: statusBody("DONE", ""), token: token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"status":"status must be one of PROGRAMMED, IN_PROGRESS, COMPLETED, CANCELLED, REPORTED"}`),
		},
		{
			name: "malformed date", method: http.MethodPatch, path: path(lessons[0].ID), body: statusBody("REPORTED", "12/03/2024"), token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"date":"date must be formatted as YYYY-MM-DD"}`),
		},
		{
			name: "unknown lesson", method: http.MethodPatch, path: path("nope"), body: statusBody("COMPLETED", ""), token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "report without date", method: http.MethodPatch, path: path(lessons[0].ID), body: statusBody("REPORTED", ""), token: token,
			wantCode: http.StatusUnprocessableEntity,
			wantData: []byte(`{"error":"a date is required to report the lesson","code":"date_required"}`),
		},
		{
			name: "report out of the academic UE period", method: http.MethodPatch, path: path(lessons[0].ID),
			body: statusBody("REPORTED", "2024-07-01"), token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"date":"date is outside of the academic UE period"}`),
		},
		{
			name: "report on another lesson's date", method: http.MethodPatch, path: path(lessons[0].ID),
			body: statusBody("REPORTED", lessons[1].Date.String()), token: token,
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "another lesson of the academic UE is already scheduled on this date"}),
		},
	})

	// nothing was committed by the rejected requests
	assert.Equal(t, 0, app.backend.DB.Calls("UpdateLessonStatusAndDate"))

	t.Run("report with a valid date", func(t *testing.T) {
		rec := app.do(http.MethodPatch, path(lessons[2].ID), token, statusBody("REPORTED", "2024-02-05"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got LessonResponse
		unmarshal(t, rec, &got)
		assert.Equal(t, lesson.StatusReported, got.Status)
		assert.Equal(t, core.MustParseDate("2024-02-05"), got.Date)
		assert.Equal(t, "Reporté", got.StatusLabel)
		assert.Equal(t, core.CategoryWarning, got.StatusCategory)
	})

	t.Run("label accepted, date ignored", func(t *testing.T) {
		rec := app.do(http.MethodPatch, path(lessons[0].ID), token, statusBody("Annulé", "2024-03-04"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got LessonResponse
		unmarshal(t, rec, &got)
		assert.Equal(t, lesson.StatusCancelled, got.Status)
		assert.Equal(t, lessons[0].Date, got.Date)
	})

	t.Run("remote failure", func(t *testing.T) {
		app.backend.DB.FailNext(errors.New("connection reset"))

		rec := app.do(http.MethodPatch, path(lessons[1].ID), token, statusBody("COMPLETED", ""))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadGateway,
			wantData: marchallObj(t, httpErr{Error: "fetching lesson: remote error: connection reset"}),
		}, rec)
	})
}

func Test_lessonApi_changeStatus_debug(t *testing.T) {
	app := setup(t, func(conf *core.Config) { conf.Debug = true })
	token := getToken(t, app.conf, professor)
	path := "/v1/lessons/" + app.backend.Lessons[0].ID + "/status"

	runHTTPTests(t, app, []httpTest{
		{
			name: "report without date keeps its code", method: http.MethodPatch, path: path, body: statusBody("REPORTED", ""), token: token,
			wantCode: http.StatusUnprocessableEntity,
			wantData: []byte(`{"error":"a date is required to report the lesson","code":"date_required"}`),
		},
		{
			name: "other errors carry the full chain", method: http.MethodPatch, path: path, body: statusBody("REPORTED", "2024-07-01"), token: token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error":"changing lesson status: 2024-07-01 not in [2024-01-01, 2024-06-30]: date is outside of the academic UE period"}`),
		},
	})
}
