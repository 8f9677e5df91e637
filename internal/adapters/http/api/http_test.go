package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/landpower/internal/adapters/http/api"
	"github.com/okian/landpower/internal/adapters/subgraph"
	"github.com/okian/landpower/internal/adapters/subgraph/subgraphtest"
	service "github.com/okian/landpower/internal/app"
	"github.com/okian/landpower/internal/domain/address"
	"github.com/okian/landpower/internal/domain/model"
	"github.com/okian/landpower/internal/domain/scoring"
	"github.com/okian/landpower/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	land    = "0xF87E31492Faf9A91B02Ee0dEAAd50d51d56D5d4d"
	estate  = "0x959e104E1a4dB6317fA58F8295F586e1A978c297"
	staking = "0x1111111111111111111111111111111111111111"
	alice   = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDependencies records the last request and answers with fixed values.
type mockDependencies struct {
	last service.Request
	resp service.Response
	err  error
}

func (m *mockDependencies) Score(_ context.Context, req service.Request) (service.Response, error) {
	m.last = req
	return m.resp, m.err
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	if m.stats == nil {
		return map[string]interface{}{}
	}
	return m.stats
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/scores", strings.NewReader(body))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.NewDecoder(w.Body).Decode(&body)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{resp: service.Response{InvocationID: "id-1", Scores: model.Scores{alice: 2}}}
		server := api.NewServer(deps, &mockStatsProvider{})
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("Then the health endpoint serves metrics", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint is accessible", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the scores endpoint is accessible", func() {
			req := httptest.NewRequest(http.MethodPost, "/scores", strings.NewReader(`{"addresses":[]}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then unknown paths are not found", func() {
			req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestScoresHandler_HandlePostScores(t *testing.T) {
	Convey("Given a scores handler", t, func() {
		deps := &mockDependencies{resp: service.Response{InvocationID: "id-1", Scores: model.Scores{alice: 16}}}
		handler := api.NewScoresHandler(deps)

		Convey("When posting a pinned request", func() {
			w := post(handler.HandlePostScores, `{
				"space": "landworks.eth",
				"network": "1",
				"addresses": ["`+alice+`"],
				"options": {"multipliers": {"land": 2}},
				"snapshot": 14000000
			}`)

			Convey("Then the scores are returned with the invocation id", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("X-Invocation-ID"), ShouldEqual, "id-1")
				var body struct {
					Scores       map[string]float64 `json:"scores"`
					InvocationID string             `json:"invocation_id"`
				}
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body.Scores[alice], ShouldEqual, 16.0)
				So(body.InvocationID, ShouldEqual, "id-1")
			})

			Convey("Then the request is passed through", func() {
				So(deps.last.Space, ShouldEqual, "landworks.eth")
				So(deps.last.Network, ShouldEqual, "1")
				So(deps.last.Addresses, ShouldResemble, []string{alice})
				So(*deps.last.Snapshot, ShouldEqual, uint64(14000000))
				So(string(deps.last.Options), ShouldContainSubstring, `"land": 2`)
			})
		})

		Convey("When the snapshot is latest", func() {
			w := post(handler.HandlePostScores, `{"addresses":["`+alice+`"],"snapshot":"latest"}`)

			Convey("Then no height is pinned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.last.Snapshot, ShouldBeNil)
			})
		})

		Convey("When the body is malformed", func() {
			w := post(handler.HandlePostScores, `{"addresses":`)

			Convey("Then it returns bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When addresses are missing", func() {
			w := post(handler.HandlePostScores, `{"space":"x"}`)

			Convey("Then it returns bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["message"], ShouldContainSubstring, "missing addresses")
			})
		})

		Convey("When the snapshot is an unknown tag", func() {
			w := post(handler.HandlePostScores, `{"addresses":[],"snapshot":"earliest"}`)

			Convey("Then it returns bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/scores", nil)
			w := httptest.NewRecorder()
			handler.HandlePostScores(w, req)

			Convey("Then it returns not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"a bad checksum", fmt.Errorf("x: %w", address.ErrBadChecksum), http.StatusBadRequest, "bad_request"},
			{"invalid options", model.ErrInvalidOptions, http.StatusBadRequest, "bad_request"},
			{"a subgraph status error", fmt.Errorf("owner batch 1/1: %w", subgraph.ErrHTTPStatus), http.StatusBadGateway, "upstream_error"},
			{"a GraphQL error", &subgraph.QueryError{Errors: []subgraph.GraphQLError{{Message: "boom"}}}, http.StatusBadGateway, "upstream_error"},
			{"an unexpected address", scoring.ErrUnexpectedAddress, http.StatusBadGateway, "upstream_error"},
			{"a stopped service", service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
			{"anything else", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		}
		for _, tc := range cases {
			Convey("When scoring fails with "+tc.name, func() {
				deps.resp = service.Response{InvocationID: "id-2"}
				deps.err = tc.err
				w := post(handler.HandlePostScores, `{"addresses":["`+alice+`"]}`)

				Convey("Then the error is mapped", func() {
					So(w.Code, ShouldEqual, tc.status)
					So(decodeError(w)["code"], ShouldEqual, tc.code)
					So(w.Header().Get("X-Invocation-ID"), ShouldEqual, "id-2")
				})
			})
		}
	})
}

func TestSnapshot_UnmarshalJSON(t *testing.T) {
	Convey("Given snapshot values", t, func() {
		var s api.Snapshot

		So(json.Unmarshal([]byte(`123`), &s), ShouldBeNil)
		So(*s.Height, ShouldEqual, uint64(123))

		So(json.Unmarshal([]byte(`"latest"`), &s), ShouldBeNil)
		So(s.Height, ShouldBeNil)

		So(json.Unmarshal([]byte(`null`), &s), ShouldBeNil)
		So(s.Height, ShouldBeNil)

		So(json.Unmarshal([]byte(`-1`), &s), ShouldNotBeNil)
		So(json.Unmarshal([]byte(`1.5`), &s), ShouldNotBeNil)
		So(json.Unmarshal([]byte(`"123"`), &s), ShouldNotBeNil)
	})
}

func TestScores_EndToEnd(t *testing.T) {
	Convey("Given a started service over an in-memory subgraph", t, func() {
		fake := subgraphtest.New(
			subgraphtest.Row{Asset: subgraphtest.Asset("1", land, alice, "", 3), Status: subgraphtest.StatusListed},
			subgraphtest.Row{Asset: subgraphtest.Asset("2", estate, alice, "", 5), Status: subgraphtest.StatusListed},
		)
		svc := service.New(service.WithClient(fake), service.WithDefaults(model.Options{
			Addresses:   model.ContractAddresses{Land: land, Estate: estate, StakingContract: staking},
			Multipliers: model.Multipliers{Land: 1},
			Subgraphs:   model.Subgraphs{LandWorks: "http://subgraph.test"},
		}))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)

		Convey("When posting lowercase addresses and a multiplier", func() {
			body := `{"addresses":["` + strings.ToLower(alice) + `"],"options":{"multipliers":{"land":2}}}`
			req := httptest.NewRequest(http.MethodPost, "/scores", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the checksummed score is (3+5)x2", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out struct {
					Scores map[string]float64 `json:"scores"`
				}
				So(json.NewDecoder(w.Body).Decode(&out), ShouldBeNil)
				So(out.Scores, ShouldResemble, map[string]float64{alice: 16})
			})
		})

		Convey("When posting a malformed address", func() {
			req := httptest.NewRequest(http.MethodPost, "/scores", strings.NewReader(`{"addresses":["0xnope"]}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it returns bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When asking for JSON", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Accept", "application/json")
			w := httptest.NewRecorder()
			handler.HandleHealth(w, req)

			Convey("Then it returns a liveness document", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When scraping", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			w := httptest.NewRecorder()
			handler.HandleHealth(w, req)

			Convey("Then it returns the exposition", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "landpower_strategy_")
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		mockStats := &mockStatsProvider{
			stats: map[string]interface{}{
				"invocations": 1000,
				"failures":    3,
			},
		}
		handler := api.NewStatsHandler(mockStats)

		Convey("When handling stats request", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then it should return stats and uptime", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var response map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response["invocations"], ShouldEqual, 1000.0)
				So(response["failures"], ShouldEqual, 3.0)
				So(response, ShouldContainKey, "uptimeSeconds")
			})
		})
	})
}
