package config

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/basisledger/iou-ledger-service/internal/utils"
)

const (
	MongoDbType    = "mongo"
	LevelDbType    = "leveldb"
	InMemoryDbPath = ":memory:"
)

type DbConfig struct {
	Type               string `mapstructure:"type"`
	DbName             string `mapstructure:"db-name"`
	Address            string `mapstructure:"address"`
	Path               string `mapstructure:"path"`
	MaxPaginationLimit int64  `mapstructure:"max-pagination-limit"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.Type == "" {
		cfg.Type = MongoDbType
	}
	if !utils.Contains([]string{MongoDbType, LevelDbType}, cfg.Type) {
		return fmt.Errorf("unsupported db type: %s", cfg.Type)
	}

	if cfg.MaxPaginationLimit < 2 {
		return fmt.Errorf("max pagination limit must be greater than 1")
	}

	if cfg.Type == LevelDbType {
		if cfg.Path == "" {
			return fmt.Errorf("missing leveldb path")
		}
		return nil
	}

	if cfg.Address == "" {
		return fmt.Errorf("missing db address")
	}

	if cfg.DbName == "" {
		return fmt.Errorf("missing db name")
	}

	u, err := url.Parse(cfg.Address)
	if err != nil {
		return fmt.Errorf("invalid db address: %w", err)
	}

	if u.Scheme != "mongodb" {
		return fmt.Errorf("unsupported db scheme: %s", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("missing host in db address")
	}

	port := u.Port()
	if port == "" {
		return fmt.Errorf("missing port in db address")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port in db address: %w", err)
	}

	if portNum < 1024 || portNum > 65535 {
		return fmt.Errorf("port number must be between 1024 and 65535 (inclusive)")
	}

	return nil
}
