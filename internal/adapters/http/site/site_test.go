package site

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestDashboardPage(t *testing.T) {
	Convey("Given the site routes on a mux", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		Convey("When the page is requested", func() {
			rec := get(mux, "/")

			Convey("Then the form, gauge and alarm are served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(rec.Header().Get("Cache-Control"), ShouldEqual, "no-cache")
				body := rec.Body.String()
				So(body, ShouldContainSubstring, "transaction-form")
				So(body, ShouldContainSubstring, "alarm_clock.ogg")
			})
		})

		Convey("When assets are requested", func() {
			script := get(mux, "/app.js")
			style := get(mux, "/style.css")

			Convey("Then the script talks to the API and the stylesheet has both backgrounds", func() {
				So(script.Code, ShouldEqual, http.StatusOK)
				So(script.Body.String(), ShouldContainSubstring, "/api/predict")
				So(script.Body.String(), ShouldContainSubstring, "/api/state")
				So(script.Body.String(), ShouldContainSubstring, "snap.last_ok")
				So(style.Code, ShouldEqual, http.StatusOK)
				So(style.Body.String(), ShouldContainSubstring, "#0b0f1a")
			})
		})

		Convey("When an unknown path is requested", func() {
			So(get(mux, "/some-asset").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAssets(t *testing.T) {
	Convey("Given the embedded file system", t, func() {
		f, err := Assets().Open("index.html")
		So(err, ShouldBeNil)
		defer func() { _ = f.Close() }()

		b, err := io.ReadAll(f)
		So(err, ShouldBeNil)
		So(string(b), ShouldContainSubstring, "<form")
	})

	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}
