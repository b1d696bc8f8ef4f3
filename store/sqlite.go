package store

import (
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore backs the Store interface with a local SQLite database.
// Useful when several tools share one credential cache.
type SQLiteStore struct {
	db *gorm.DB
}

var _ Store = (*SQLiteStore)(nil)

type deviceRecord struct {
	ID        uint `gorm:"primaryKey"`
	CN        string
	CV        string
	UpdatedAt time.Time
}

type answerRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Question  string `gorm:"index"`
	Answer    string
	CreatedAt time.Time
}

func (deviceRecord) TableName() string { return "device_tokens" }
func (answerRecord) TableName() string { return "mfa_answers" }

// OpenSQLite opens (or creates) the database at path and migrates the
// schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&deviceRecord{}, &answerRecord{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) DeviceTokens() (string, string, error) {
	var rec deviceRecord
	err := s.db.First(&rec, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	return rec.CN, rec.CV, nil
}

func (s *SQLiteStore) SaveDeviceTokens(cn, cv string) error {
	rec := deviceRecord{ID: 1, CN: cn, CV: cv}
	return s.db.Save(&rec).Error
}

func (s *SQLiteStore) Answers(question string) ([]string, error) {
	var recs []answerRecord
	err := s.db.Where("question = ?", question).Order("id").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	answers := make([]string, 0, len(recs))
	for _, r := range recs {
		answers = append(answers, r.Answer)
	}
	return answers, nil
}

func (s *SQLiteStore) SaveAnswer(question, answer string) error {
	rec := answerRecord{Question: question, Answer: answer}
	return s.db.
		Where(answerRecord{Question: question, Answer: answer}).
		FirstOrCreate(&rec).Error
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
