package database

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

type MigrationLogger struct {
	ectologger.Logger
}

func (l MigrationLogger) Verbose() bool {
	return true
}

func (l MigrationLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}

type MigrationService struct {
	config *MigrationConfig
	files  fs.FS
	logger ectologger.Logger
}

type MigrationConfig struct {
	// FolderPath is the directory inside the migration FS holding the *.sql files.
	FolderPath   string
	Version      uint
	Force        int
	AutoRollback bool // roll a dirty database back to the previous version when a migration fails
}

func NewMigrationService(logger ectologger.Logger, files fs.FS, config *MigrationConfig) *MigrationService {
	return &MigrationService{
		config: config,
		files:  files,
		logger: logger,
	}
}

func (ms *MigrationService) Migrate(databaseName string, db DB) error {
	driver, err := postgres.WithInstance(db.SQLX().DB, &postgres.Config{DatabaseName: databaseName})
	if err != nil {
		ms.logger.WithError(err).Error("Failed to create migration driver")
		return errors.Wrap(err, "failed to create migration driver")
	}

	src, err := iofs.New(ms.files, ms.config.FolderPath)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("migration folder %s does not exist", ms.config.FolderPath))
	}

	m, err := migrate.NewWithInstance("iofs", src, databaseName, driver)
	if err != nil {
		ms.logger.WithError(err).Error("Failed to create migrate instance")
		return err
	}

	m.Log = MigrationLogger{Logger: ms.logger}

	return ms.runMigration(m)
}

func (ms *MigrationService) runMigration(m *migrate.Migrate) error {
	if ms.config.Force != 0 {
		if err := m.Force(ms.config.Force); err != nil {
			ms.logger.WithError(err).Errorf("Failed to force database to version %d", ms.config.Force)
			return err
		}
	}

	version, _, versionErr := m.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		ms.logger.WithError(versionErr).Error("Failed to get current migration version")
	}

	done := make(chan struct{})
	go ms.logProgress(done)

	startTime := time.Now()

	var migrationErr error
	if ms.config.Version != 0 {
		migrationErr = m.Migrate(ms.config.Version)
	} else {
		migrationErr = m.Up()
	}

	close(done)

	ms.logger.Infof("Database migrations completed in %v", time.Since(startTime))

	return ms.handleMigrationError(m, migrationErr, version)
}

func (ms *MigrationService) logProgress(done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	dots := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			dots = (dots + 1) % 4
			ms.logger.Debugf("Executing database migrations%s", strings.Repeat(".", dots))
		}
	}
}

func (ms *MigrationService) handleMigrationError(m *migrate.Migrate, err error, previousVersion uint) error {
	if err == nil {
		ms.logger.Info("Successfully applied migrations")
		return nil
	}

	if err == migrate.ErrNoChange {
		ms.logger.Info("No new migrations to apply")
		return nil
	}

	// the database is ahead of the embedded files, usually after a rollback of the binary
	if strings.Contains(err.Error(), "no migration found for version") {
		latest, latestErr := ms.latestVersion()
		if latestErr != nil {
			ms.logger.WithError(latestErr).Error("Failed to get latest migration version")
			return latestErr
		}
		ms.logger.Warnf("No migration found for version %d. Latest version is %d", previousVersion, latest)
		if err := m.Force(latest); err != nil {
			ms.logger.WithError(err).Errorf("Failed to force database to version %d", latest)
			return err
		}
		return nil
	}

	ms.logger.WithError(err).Errorf("Migration failed with error: %v", err)

	version, dirty, versionErr := m.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		ms.logger.WithError(versionErr).Error("Failed to get current migration version")
		return err
	}

	if ms.config.AutoRollback && dirty {
		if previousVersion == 0 && version > 0 {
			previousVersion = version - 1
		}
		ms.logger.Warnf("Database is dirty at version %d. Reverting to version %d", version, previousVersion)

		target := int(previousVersion)
		if target == 0 {
			target = -1
		}
		if forceErr := m.Force(target); forceErr != nil {
			ms.logger.WithError(forceErr).Errorf("Failed to force database to version %d", target)
			return forceErr
		}
		return err
	}

	ms.logger.WithError(err).Errorf("Failed to apply migrations. Database version is dirty=%t at version %d", dirty, version)
	return err
}

var migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.up\.sql$`)

func (ms *MigrationService) latestVersion() (int, error) {
	return latestVersion(ms.files, ms.config.FolderPath)
}

func latestVersion(files fs.FS, dir string) (int, error) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return 0, err
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if len(matches) < 2 {
			continue
		}
		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, err
		}
		versions = append(versions, version)
	}

	if len(versions) == 0 {
		return 0, fmt.Errorf("no migration files found in %s", dir)
	}

	sort.Ints(versions)
	return versions[len(versions)-1], nil
}
