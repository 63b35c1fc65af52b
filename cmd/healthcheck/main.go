// main.go
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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/config"
	"github.com/localnerve/equirecords/internal/database"
	"github.com/localnerve/equirecords/internal/logging"
	"github.com/localnerve/equirecords/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if _, err := logging.New("error"); err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	var c cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		if c, err = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Perform health check
	result := services.HealthCheck(ctx, cfg, db, c)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if !result.Healthy() {
		os.Exit(1)
	}
	os.Exit(0)
}
