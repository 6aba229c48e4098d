// Package database manages the two MySQL connection pools behind the
// terminal: one for product/inventory data, one for staff/attendance.
// Pools are created lazily on first use, bounded, and validated once
// (server compatibility + TLS) when opened.
package database

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"modern-pos-backend/internal/config"
	"modern-pos-backend/internal/poserr"
)

const tlsConfigKey = "pos-db"

// Pools lazily opens and hands out the product and staff database
// handles. gorm's database/sql layer does the per-statement checkout
// and release, so a handle can never leak on an error path.
type Pools struct {
	cfg *config.Config
	log *zap.Logger

	mu      sync.Mutex
	product *gorm.DB
	staff   *gorm.DB

	tlsOnce sync.Once
	tlsErr  error
	useTLS  bool
}

func NewPools(cfg *config.Config, log *zap.Logger) *Pools {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pools{cfg: cfg, log: log}
}

// Product returns the product/inventory pool, opening it on first use.
func (p *Pools) Product() (*gorm.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.product == nil {
		db, err := p.open(p.cfg.ProductDB, p.cfg.ProductPoolSize)
		if err != nil {
			return nil, err
		}
		p.product = db
	}
	return p.product, nil
}

// Staff returns the staff/attendance pool, opening it on first use.
func (p *Pools) Staff() (*gorm.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.staff == nil {
		db, err := p.open(p.cfg.StaffDB, p.cfg.StaffPoolSize)
		if err != nil {
			return nil, err
		}
		p.staff = db
	}
	return p.staff, nil
}

// Close shuts both pools down. Safe to call with pools never opened.
func (p *Pools) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, db := range []*gorm.DB{p.product, p.staff} {
		if db == nil {
			continue
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	p.product, p.staff = nil, nil
}

func (p *Pools) open(schema string, size int) (*gorm.DB, error) {
	if err := p.setupTLS(); err != nil {
		return nil, err
	}

	dsnCfg := mysqldrv.NewConfig()
	dsnCfg.User = p.cfg.DBUser
	dsnCfg.Passwd = p.cfg.DBPass
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", p.cfg.DBHost, p.cfg.DBPort)
	dsnCfg.DBName = schema
	dsnCfg.ParseTime = true
	dsnCfg.Collation = "utf8mb4_unicode_ci"
	dsnCfg.Params = map[string]string{"charset": "utf8mb4"}
	if p.useTLS {
		dsnCfg.TLSConfig = tlsConfigKey
	}

	db, err := gorm.Open(gormmysql.Open(dsnCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, poserr.Connection(err, "could not establish pool for schema %q", schema)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, poserr.Connection(err, "could not access pool for schema %q", schema)
	}
	sqlDB.SetMaxOpenConns(size)
	sqlDB.SetMaxIdleConns(size)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, poserr.Connection(err, "database %q is unreachable", schema)
	}
	if err := p.checkServerVersion(db); err != nil {
		return nil, err
	}

	p.log.Info("database pool ready",
		zap.String("schema", schema), zap.Int("pool_size", size))
	return db, nil
}

// setupTLS registers the CA certificate with the driver exactly once.
// A missing or malformed CA is a hard setup failure: silently falling
// back to plaintext would hide a misconfigured secure deployment.
func (p *Pools) setupTLS() error {
	p.tlsOnce.Do(func() {
		if p.cfg.SSLCA == "" {
			return
		}
		pem, err := os.ReadFile(p.cfg.SSLCA)
		if err != nil {
			p.tlsErr = poserr.Connection(err,
				"TLS setup failed: cannot read CA certificate %q", p.cfg.SSLCA)
			return
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			p.tlsErr = poserr.Connection(nil,
				"TLS setup failed: %q is not a valid PEM certificate", p.cfg.SSLCA)
			return
		}
		if err := mysqldrv.RegisterTLSConfig(tlsConfigKey, &tls.Config{RootCAs: pool}); err != nil {
			p.tlsErr = poserr.Connection(err, "TLS setup failed: secure sockets unavailable")
			return
		}
		p.useTLS = true
	})
	return p.tlsErr
}

// checkServerVersion rejects servers too old for the utf8mb4 collation
// and GREATEST-based stock updates this code relies on.
func (p *Pools) checkServerVersion(db *gorm.DB) error {
	var version string
	if err := db.Raw("SELECT VERSION()").Scan(&version).Error; err != nil {
		return poserr.Connection(err, "could not determine MySQL server version")
	}
	major, minor := parseVersion(version)
	if major == 0 {
		return nil // non-numeric version string (forks, proxies); assume ok
	}
	if major < 5 || (major == 5 && minor < 7) {
		return poserr.Connection(nil,
			"MySQL %s is unsupported; upgrade the server and install a compatible driver (>= 8)", version)
	}
	return nil
}

func parseVersion(version string) (major, minor int) {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) > 0 {
		major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(strings.SplitN(parts[1], "-", 2)[0])
	}
	return major, minor
}
