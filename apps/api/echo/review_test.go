package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/review"
	"github.com/trezcool/elimu/testutil"
)

func Test_reviewApi_lifecycle(t *testing.T) {
	app := setup(t)
	crs, _ := testutil.CreateCourse(t, app.courseRepo, "go-basics", 1)
	alice := getToken(t, app.guard, "alice")
	bob := getToken(t, app.guard, "bob")
	base := "/v1/courses/" + crs.ID

	aggregate := func() (float64, int) {
		t.Helper()
		var c course.Course
		rec := app.do(httpTest{path: base})
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshallObj(t, rec, &c)
		return c.AverageRating, c.ReviewsCount
	}

	var rv1, rv2 review.Review
	rec := app.do(httpTest{method: http.MethodPost, path: base + "/reviews", token: alice, body: []byte(`{"name":" Alice ","rating":5,"title":"Great"}`)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	unmarshallObj(t, rec, &rv1)
	assert.Equal(t, "Alice", rv1.Name)
	assert.EqualValues(t, "alice", rv1.AuthorID)

	rec = app.do(httpTest{method: http.MethodPost, path: base + "/reviews", token: bob, body: []byte(`{"rating":2}`)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	unmarshallObj(t, rec, &rv2)

	avg, count := aggregate()
	assert.Equal(t, 3.5, avg)
	assert.Equal(t, 2, count)

	var reviews []review.Review
	rec = app.do(httpTest{path: base + "/reviews"})
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshallObj(t, rec, &reviews)
	assert.Len(t, reviews, 2)

	rec = app.do(httpTest{path: base + "/reviews?limit=1"})
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshallObj(t, rec, &reviews)
	assert.Len(t, reviews, 1)

	// only the author may modify a review
	tt := httpTest{
		method: http.MethodPatch, path: "/v1/reviews/" + rv2.ID, token: alice, body: []byte(`{"rating":5}`),
		wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied", Kind: "forbidden"}),
	}
	checkCodeAndData(t, tt, app.do(tt))

	rec = app.do(httpTest{method: http.MethodPatch, path: "/v1/reviews/" + rv2.ID, token: bob, body: []byte(`{"rating":4}`)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshallObj(t, rec, &rv2)
	assert.Equal(t, 4, rv2.Rating)

	avg, count = aggregate()
	assert.Equal(t, 4.5, avg)
	assert.Equal(t, 2, count)

	tt = httpTest{
		method: http.MethodDelete, path: "/v1/reviews/" + rv1.ID, token: alice,
		wantCode: http.StatusOK, wantData: []byte(`{"success":"Review deleted"}`),
	}
	checkCodeAndData(t, tt, app.do(tt))

	avg, count = aggregate()
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 1, count)

	tt = httpTest{
		method: http.MethodDelete, path: "/v1/reviews/" + rv1.ID, token: alice, wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "review not found", Kind: "review_not_found"}),
	}
	checkCodeAndData(t, tt, app.do(tt))
}

func Test_reviewApi_errors(t *testing.T) {
	app := setup(t)
	crs, _ := testutil.CreateCourse(t, app.courseRepo, "go-basics", 1)
	token := getToken(t, app.guard, "alice")
	path := "/v1/courses/" + crs.ID + "/reviews"

	errInvalidRating := httpErr{Error: "rating must be an integer between 1 and 5", Kind: "invalid_rating"}

	tests := []httpTest{
		{name: "Auth required", method: http.MethodPost, path: path, body: []byte(`{"rating":5}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Unknown course", method: http.MethodPost, path: "/v1/courses/lol/reviews", token: token, body: []byte(`{"rating":5}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found", Kind: "course_not_found"}),
		},
		{name: "Auth before course lookup", method: http.MethodPost, path: "/v1/courses/lol/reviews", body: []byte(`{"rating":5}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Rating missing", method: http.MethodPost, path: path, token: token, body: []byte(`{"title":"meh"}`), wantCode: http.StatusBadRequest, wantData: marchallObj(t, errInvalidRating)},
		{name: "Rating too high", method: http.MethodPost, path: path, token: token, body: []byte(`{"rating":6}`), wantCode: http.StatusBadRequest, wantData: marchallObj(t, errInvalidRating)},
		{name: "Rating too low", method: http.MethodPost, path: path, token: token, body: []byte(`{"rating":0}`), wantCode: http.StatusBadRequest, wantData: marchallObj(t, errInvalidRating)},
		{name: "Malformed body", method: http.MethodPost, path: path, token: token, body: []byte(`{"rating":`), wantCode: http.StatusBadRequest},
		{
			name: "Unknown review", method: http.MethodPut, path: "/v1/reviews/lol", token: token, body: []byte(`{"rating":5}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "review not found", Kind: "review_not_found"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt))
		})
	}

	got, err := app.courseRepo.GetCourse(context.Background(), crs.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ReviewsCount)
}

func Test_reviewApi_requireCompletion(t *testing.T) {
	app := setup(t, func(conf *core.Config) { conf.Reviews.RequireCompletion = true })
	crs, lessons := testutil.CreateCourse(t, app.courseRepo, "go-basics", 1)
	token := getToken(t, app.guard, "alice")
	base := "/v1/courses/" + crs.ID

	tt := httpTest{
		method: http.MethodPost, path: base + "/reviews", token: token, body: []byte(`{"rating":5}`),
		wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "Not enrolled", Kind: "not_eligible"}),
	}
	checkCodeAndData(t, tt, app.do(tt))

	require.Equal(t, http.StatusCreated, app.do(httpTest{method: http.MethodPost, path: base + "/enrollment", token: token}).Code)
	require.Equal(t, http.StatusOK, app.do(httpTest{method: http.MethodPost, path: base + "/lessons/" + lessons[0].ID + "/complete", token: token}).Code)

	rec := app.do(httpTest{method: http.MethodPost, path: base + "/reviews", token: token, body: []byte(`{"rating":5}`)})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got, err := app.courseRepo.GetCourse(context.Background(), crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.AverageRating)
	assert.Equal(t, 1, got.ReviewsCount)
}
