package metadata

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func newTestOMDb(rt roundTripFunc) Provider {
	return NewOMDbClient("key", "https://www.omdbapi.com/", ClientOptions{HTTPClient: &http.Client{Transport: rt}})
}

func TestOMDbHasNoTrendingFeed(t *testing.T) {
	if _, ok := newTestOMDb(nil).(TrendingProvider); ok {
		t.Fatalf("omdb client must not implement TrendingProvider")
	}
}

func TestOMDbSearch(t *testing.T) {
	client := newTestOMDb(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Get("s") != "batman" || q.Get("page") != "2" || q.Get("type") != "movie" || q.Get("apikey") != "key" {
			t.Fatalf("unexpected request %s", req.URL.String())
		}
		return jsonResponse(http.StatusOK, `{"Search":[
			{"Title":"Batman Begins","Year":"2005","imdbID":"tt0372784","Type":"movie","Poster":"https://m.media-amazon.com/b.jpg"},
			{"Title":"Batman: Unknown","Year":"N/A","imdbID":"tt0000002","Type":"movie","Poster":"N/A"}
		],"totalResults":"2","Response":"True"}`), nil
	})

	records, err := client.Search(context.Background(), "batman", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "tt0372784" || records[0].Year != "2005" || records[0].MediaType != "movie" {
		t.Fatalf("unexpected record %+v", records[0])
	}
	if records[1].Year != "" || records[1].Poster != "" {
		t.Fatalf("expected N/A values to be blank, got %+v", records[1])
	}
}

func TestOMDbSearchNoMatches(t *testing.T) {
	client := newTestOMDb(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"Response":"False","Error":"Movie not found!"}`), nil
	})

	records, err := client.Search(context.Background(), "zzzz", 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", records)
	}
}

func TestOMDbSearchFailureFlag(t *testing.T) {
	client := newTestOMDb(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"Response":"False","Error":"Invalid API key!"}`), nil
	})

	if _, err := client.Search(context.Background(), "batman", 1); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestOMDbFetchByID(t *testing.T) {
	client := newTestOMDb(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if q.Get("i") != "tt0109830" || q.Get("plot") != "full" {
			t.Fatalf("unexpected request %s", req.URL.String())
		}
		return jsonResponse(http.StatusOK, `{"Title":"Forrest Gump","Year":"1994","imdbID":"tt0109830","Type":"movie",
			"Plot":"The history of the United States","Genre":"Drama, Romance","Runtime":"142 min",
			"Director":"Robert Zemeckis","Actors":"Tom Hanks, Robin Wright","imdbRating":"8.8","Response":"True"}`), nil
	})

	record, err := client.FetchByID(context.Background(), "tt0109830")
	if err != nil {
		t.Fatalf("FetchByID failed: %v", err)
	}
	if record.Rating != 8.8 || record.Runtime != "142 min" || record.Director != "Robert Zemeckis" || record.Overview == "" {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestOMDbFetchByIDErrors(t *testing.T) {
	tests := []struct {
		body string
		want error
	}{
		{body: `{"Response":"False","Error":"Incorrect IMDb ID."}`, want: ErrNotFound},
		{body: `{"Response":"False","Error":"Error getting data."}`, want: ErrUpstreamUnavailable},
		{body: `not json`, want: ErrUpstreamUnavailable},
	}
	for _, tc := range tests {
		client := newTestOMDb(func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, tc.body), nil
		})
		if _, err := client.FetchByID(context.Background(), "tt1"); !errors.Is(err, tc.want) {
			t.Fatalf("body %s: expected %v, got %v", tc.body, tc.want, err)
		}
	}
}
