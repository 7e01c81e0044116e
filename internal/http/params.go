package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"shoplens/internal/filters"
	"shoplens/internal/timeframe"
)

// parseFilterSpec reads from, to, sources and products query params into a
// filter selection. Absent params leave their dimension unconstrained; a
// present-but-empty multiselect param is an explicit empty selection.
func parseFilterSpec(c *fiber.Ctx) (filters.Spec, error) {
	spec := filters.Spec{}

	r, err := timeframe.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return filters.Spec{}, err
	}
	spec.Range = r

	if values, ok := c.Queries()["sources"]; ok {
		spec.UTMSources = splitParam(values)
	}

	if values, ok := c.Queries()["products"]; ok {
		parts := splitParam(values)
		ids := make([]int64, 0, len(parts))
		for _, part := range parts {
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return filters.Spec{}, fmt.Errorf("invalid product id %q", part)
			}
			ids = append(ids, id)
		}
		spec.ProductIDs = ids
	}

	return spec, nil
}

// splitParam turns a comma-separated param into a non-nil slice; an empty
// value means "selected nothing", not "no filter".
func splitParam(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
