// common.go
//
// An equine records REST service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of equirecords.
// equirecords is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// equirecords is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with equirecords.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/equirecords/internal/filters"
	"github.com/localnerve/equirecords/internal/types"
	"github.com/localnerve/equirecords/internal/utils"
)

// Clock returns the current time; list filters with age ranges depend on it
type Clock func() time.Time

func (f Clock) now() time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f().UTC()
}

// queryValues collects every query argument, keeping repeated keys
func queryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		values.Add(string(key), string(value))
	}
	return values
}

// parseListQuery reads the flat filter parameters of a list request
func parseListQuery(c *fiber.Ctx) (filters.Query, error) {
	return filters.Parse(queryValues(c))
}

// pathID validates the :id route parameter
func pathID(c *fiber.Ctx) (string, error) {
	return utils.ParseID(c.Params("id"), "id")
}

// queryID validates an identifier passed as a query parameter
func queryID(c *fiber.Ctx, name string) (string, error) {
	return utils.ParseID(c.Query(name), name)
}

// decodeBody decodes the JSON body into T without validating it
func decodeBody[T any](c *fiber.Ctx) (T, error) {
	var value T
	if err := json.Unmarshal(c.Body(), &value); err != nil {
		return value, types.BadRequest("ValidationError", "invalid request body: %v", err)
	}
	return value, nil
}

// formValues returns the values of a multipart field, splitting comma-separated entries
func formValues(values map[string][]string, key string) []string {
	var out []string
	for _, v := range values[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}
