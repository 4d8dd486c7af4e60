package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/testutil"
)

func Test_courseApi(t *testing.T) {
	app := setup(t)
	now := time.Now()

	go1, lessons := testutil.CreateCourse(t, app.courseRepo, "go-basics", 2, now.Add(-time.Hour))
	k8s, _ := testutil.CreateCourse(t, app.courseRepo, "k8s-intro", 0, now)

	errNotFound := httpErr{Error: "course not found", Kind: "course_not_found"}

	tests := []httpTest{
		{name: "list (newest first)", path: "/v1/courses", wantCode: http.StatusOK, wantData: marchallObj(t, []course.Course{k8s, go1})},
		{name: "list (limit)", path: "/v1/courses?limit=1", wantCode: http.StatusOK, wantData: marchallObj(t, []course.Course{k8s})},
		{name: "retrieve by id", path: "/v1/courses/" + go1.ID, wantCode: http.StatusOK, wantData: marchallObj(t, go1)},
		{name: "retrieve by slug", path: "/v1/courses/K8S-Intro", wantCode: http.StatusOK, wantData: marchallObj(t, k8s)},
		{name: "retrieve (unknown)", path: "/v1/courses/lol", wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{
			name: "with lessons", path: "/v1/courses/slug/go-basics", wantCode: http.StatusOK,
			wantData: marchallObj(t, course.WithLessons{Course: go1, Lessons: lessons}),
		},
		{name: "with lessons (unknown)", path: "/v1/courses/slug/lol", wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt))
		})
	}
}

func Test_courseApi_emptyList(t *testing.T) {
	app := setup(t)
	rec := app.do(httpTest{path: "/v1/courses"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
