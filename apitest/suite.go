package apitest

import (
	"net/http"

	"github.com/stretchr/testify/suite"
)

// Suite is a testify suite with an [API] fixture. Handler builds the handler
// under test; it is called before every test.
//
//	type WidgetSuite struct {
//		apitest.Suite
//	}
//
//	func TestWidgets(t *testing.T) {
//		suite.Run(t, &WidgetSuite{Suite: apitest.Suite{Handler: newRouter}})
//	}
type Suite struct {
	suite.Suite
	API

	Handler func() http.Handler
}

// SetupTest starts a fresh server and clears the token.
func (s *Suite) SetupTest() {
	s.API = API{Encode: s.API.Encode}
	s.API.Init(s.T(), s.Handler())
}
