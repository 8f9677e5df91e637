package subgraph_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/landpower/internal/adapters/subgraph"
	"github.com/okian/landpower/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// newServer starts a subgraph stand-in that records the query text and
// replies with status and body.
func newServer(t *testing.T, status int, body string, seen *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		var req struct {
			Query string `json:"query"`
		}
		_ = json.Unmarshal(raw, &req)
		if seen != nil {
			*seen = req.Query
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func ownerQuery() subgraph.AssetQuery {
	return subgraph.AssetQuery{
		Where: subgraph.Where{OwnerIn: []string{"0xaa"}, StatusNot: "WITHDRAWN"},
		First: 1000,
	}
}

func TestClient_Assets(t *testing.T) {
	Convey("Given a subgraph client", t, func() {
		client := subgraph.NewClient(subgraph.WithLogger(logger.Get()), subgraph.WithQueryTimeout(2*time.Second))
		ctx := context.Background()

		Convey("When the subgraph returns assets", func() {
			var seen string
			srv := newServer(t, http.StatusOK, `{"data":{"assets":[
				{"id":"1","metaverseRegistry":{"id":"0xland"},"metaverseAssetId":"42","owner":{"id":"0xaa"},
				 "decentralandData":{"id":"d1","coordinates":[{"id":"1,1"},{"id":"1,2"}]}}
			]}}`, &seen)

			assets, err := client.Assets(ctx, srv.URL, ownerQuery())

			Convey("Then the page is decoded", func() {
				So(err, ShouldBeNil)
				So(len(assets), ShouldEqual, 1)
				So(assets[0].Owner.ID, ShouldEqual, "0xaa")
				So(assets[0].MetaverseAssetID, ShouldEqual, "42")
				So(assets[0].Weight(), ShouldEqual, 2)
				So(seen, ShouldEqual, ownerQuery().GraphQL())
			})
		})

		Convey("When the subgraph returns an empty page", func() {
			srv := newServer(t, http.StatusOK, `{"data":{"assets":[]}}`, nil)
			assets, err := client.Assets(ctx, srv.URL, ownerQuery())

			Convey("Then an empty, non-nil slice is returned", func() {
				So(err, ShouldBeNil)
				So(assets, ShouldNotBeNil)
				So(len(assets), ShouldEqual, 0)
			})
		})

		Convey("When the subgraph answers with a non-2xx status", func() {
			srv := newServer(t, http.StatusBadGateway, `upstream down`, nil)
			_, err := client.Assets(ctx, srv.URL, ownerQuery())

			Convey("Then ErrHTTPStatus is returned with the body", func() {
				So(errors.Is(err, subgraph.ErrHTTPStatus), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "502")
				So(err.Error(), ShouldContainSubstring, "upstream down")
			})
		})

		Convey("When the subgraph answers with GraphQL errors", func() {
			srv := newServer(t, http.StatusOK, `{"data":null,"errors":[{"message":"block not indexed"},{"message":"try later"}]}`, nil)
			_, err := client.Assets(ctx, srv.URL, ownerQuery())

			Convey("Then a QueryError wrapping ErrQuery is returned", func() {
				So(errors.Is(err, subgraph.ErrQuery), ShouldBeTrue)
				var qe *subgraph.QueryError
				So(errors.As(err, &qe), ShouldBeTrue)
				So(len(qe.Errors), ShouldEqual, 2)
				So(err.Error(), ShouldContainSubstring, "block not indexed; try later")
			})
		})

		Convey("When the response has no assets field", func() {
			srv := newServer(t, http.StatusOK, `{"data":{}}`, nil)
			_, err := client.Assets(ctx, srv.URL, ownerQuery())

			Convey("Then ErrDecode is returned", func() {
				So(errors.Is(err, subgraph.ErrDecode), ShouldBeTrue)
			})
		})

		Convey("When the response is not JSON", func() {
			srv := newServer(t, http.StatusOK, `<html>`, nil)
			_, err := client.Assets(ctx, srv.URL, ownerQuery())
			So(errors.Is(err, subgraph.ErrDecode), ShouldBeTrue)
		})

		Convey("When the endpoint is unreachable", func() {
			srv := newServer(t, http.StatusOK, `{}`, nil)
			url := srv.URL
			srv.Close()
			_, err := client.Assets(ctx, url, ownerQuery())

			Convey("Then ErrTransport is returned", func() {
				So(errors.Is(err, subgraph.ErrTransport), ShouldBeTrue)
			})
		})

		Convey("When the query exceeds the timeout", func() {
			slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			}))
			defer slow.Close()
			fast := subgraph.NewClient(subgraph.WithQueryTimeout(50 * time.Millisecond))

			_, err := fast.Assets(ctx, slow.URL, ownerQuery())

			Convey("Then the request is aborted", func() {
				So(errors.Is(err, subgraph.ErrTransport), ShouldBeTrue)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}
