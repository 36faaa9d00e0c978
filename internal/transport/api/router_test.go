package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/osama-agency/telesklad/internal/logger"
	"github.com/osama-agency/telesklad/internal/metrics"
	"github.com/osama-agency/telesklad/internal/transport/api/mocks"
	"github.com/osama-agency/telesklad/internal/transport/api/testutils"
	"github.com/osama-agency/telesklad/internal/transport/api/tokens"
)

type RouterTestSuite struct {
	suite.Suite
	mockCtrl                *gomock.Controller
	router                  *gin.Engine
	mockPurchaseService     *mocks.MockPurchaseServicer
	mockOrderService        *mocks.MockOrderServicer
	mockNotificationService *mocks.MockNotificationServicer
	mockLoyaltyService      *mocks.MockLoyaltyServicer
	mockJobs                *mocks.MockJobProcessor
	jwtSecret               []byte
	token                   string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockPurchaseService = mocks.NewMockPurchaseServicer(s.mockCtrl)
	s.mockOrderService = mocks.NewMockOrderServicer(s.mockCtrl)
	s.mockNotificationService = mocks.NewMockNotificationServicer(s.mockCtrl)
	s.mockLoyaltyService = mocks.NewMockLoyaltyServicer(s.mockCtrl)
	s.mockJobs = mocks.NewMockJobProcessor(s.mockCtrl)
	s.jwtSecret = []byte("super secret key")

	router, err := New(RouterArgs{
		Logger:              logger.New(os.Stdout),
		PurchaseService:     s.mockPurchaseService,
		OrderService:        s.mockOrderService,
		NotificationService: s.mockNotificationService,
		LoyaltyService:      s.mockLoyaltyService,
		Jobs:                s.mockJobs,
		MetricsHandler:      metrics.New(nil).Handler(),
		JWTSecretKey:        s.jwtSecret,
	})
	s.Require().NoError(err)
	s.router = router

	token, tokenErr := tokens.GenerateAdminJWT("operator", time.Hour, s.jwtSecret)
	s.Require().NoError(tokenErr)
	s.token = token
}

func (s *RouterTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// request выполняет запрос с токеном администратора и возвращает статус и тело ответа.
func (s *RouterTestSuite) request(method, url string, body any) (int, []byte) {
	return s.requestWithToken(method, url, body, s.token)
}

func (s *RouterTestSuite) requestWithToken(method, url string, body any, token string) (int, []byte) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	reqOpts := []func(*testutils.RequestOptions){
		testutils.WithHeader("Content-Type", "application/json; charset=utf-8"),
	}
	if token != "" {
		reqOpts = append(reqOpts, testutils.WithHeader("Authorization", "Bearer "+token))
	}

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    url,
		Body:   reader,
	}, reqOpts...)
	s.Require().NoError(err)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	raw, readErr := io.ReadAll(res.Body)
	s.Require().NoError(readErr)
	return res.StatusCode, raw
}

func replaceParam(route, param, value string) string {
	return strings.Replace(route, param, value, 1)
}

func (s *RouterTestSuite) TestAuthRequired() {
	expired, err := tokens.GenerateAdminJWT("operator", -time.Minute, s.jwtSecret)
	s.Require().NoError(err)
	foreign, err := tokens.GenerateAdminJWT("operator", time.Hour, []byte("another key"))
	s.Require().NoError(err)

	cases := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "expired", token: expired},
		{name: "foreign key", token: foreign},
		{name: "garbage", token: "not-a-jwt"},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			status, body := s.requestWithToken(http.MethodPost, RouteGroup+JobsRunRoute, nil, t.token)
			s.Equal(http.StatusUnauthorized, status)
			s.JSONEq(`{"error":"Unauthorized"}`, string(body))
		})
	}
}

func (s *RouterTestSuite) TestMetricsArePublic() {
	status, _ := s.requestWithToken(http.MethodGet, MetricsRoute, nil, "")
	s.Equal(http.StatusOK, status)
}
