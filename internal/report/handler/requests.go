package handler

import (
	"net/http"
	"strconv"
	"strings"

	"bizverify/internal/report"
	dErrors "bizverify/pkg/domain-errors"
	pkgstrings "bizverify/pkg/platform/strings"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// query holds the parsed filter and view shared by the read endpoints.
type query struct {
	Filter report.Filter
	View   report.View
}

func parseQuery(r *http.Request) (query, error) {
	values := r.URL.Query()
	filter, err := report.ParseFilter(values.Get("from"), values.Get("to"), pkgstrings.SplitList(values["county"]...))
	if err != nil {
		return query{}, err
	}
	view, err := report.ParseView(values.Get("view"))
	if err != nil {
		return query{}, err
	}
	return query{Filter: filter, View: view}, nil
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultRunsLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
	}
	return min(n, maxRunsLimit), nil
}
