package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/elimu/apps/api/echo"
	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/auth"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/enrollment"
	"github.com/trezcool/elimu/core/review"
	"github.com/trezcool/elimu/services/metrics"
	"github.com/trezcool/elimu/storage/database/inmem"
	"github.com/trezcool/elimu/testutil"
)

var errMissingToken = httpErr{Error: "missing credential", Kind: "unauthenticated"}

type testApp struct {
	Server
	courseRepo course.Repository
	guard      *auth.Guard
	logger     *testutil.Logger
	pinger     *fakePinger
}

type fakePinger struct {
	err error
}

func (p *fakePinger) PingContext(context.Context) error { return p.err }

func setup(t *testing.T, configure ...func(conf *core.Config)) *testApp {
	t.Helper()
	conf := testutil.Config()
	for _, fn := range configure {
		fn(conf)
	}

	// set up DB & repos
	db := inmemdb.NewDB()
	courseRepo := inmemdb.NewCourseRepository(db)
	enrRepo := inmemdb.NewEnrollmentRepository(db)
	reviewRepo := inmemdb.NewReviewRepository(db)

	// set up services
	validate, translator := testutil.NewValidator()
	logger := new(testutil.Logger)
	mtrcs := metricsvc.New(prometheus.NewRegistry())
	courseSvc := course.NewService(courseRepo, validate)
	enrSvc := enrollment.NewService(enrRepo, courseSvc, conf, mtrcs)
	reviewSvc := review.NewService(review.ServiceDeps{
		Repo:        reviewRepo,
		Catalog:     courseSvc,
		Eligibility: enrSvc,
		Logger:      logger,
		Metrics:     mtrcs,
		Validate:    validate,
		Conf:        conf,
	})
	guard := auth.NewGuard(conf)
	pinger := new(fakePinger)

	// set up server
	srv := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		DB:            pinger,
		Guard:         guard,
		CourseSvc:     courseSvc,
		EnrollmentSvc: enrSvc,
		ReviewSvc:     reviewSvc,
		Metrics:       mtrcs,
		Translator:    translator,
	})
	t.Cleanup(func() { _ = srv.Close() })

	return &testApp{
		Server:     srv,
		courseRepo: courseRepo,
		guard:      guard,
		logger:     logger,
		pinger:     pinger,
	}
}

type httpErr struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (app *testApp) do(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, guard *auth.Guard, learner auth.Identity) string {
	token, err := guard.Issue(learner)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshallObj(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarshallObj(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
