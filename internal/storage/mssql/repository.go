package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"course-scraper/internal/checksum"
	"course-scraper/internal/observability"
	"course-scraper/internal/scraper"
)

const upsertCourseQuery = `
	MERGE INTO TblCourses AS target
	USING (SELECT @CheckSum AS CheckSum) AS source
	ON target.[CheckSum] = source.CheckSum
	WHEN MATCHED THEN
		UPDATE SET
			[Description] = @Description,
			[Duration] = @Duration,
			[Rating] = @Rating,
			[Price] = @Price,
			[ImageName] = @ImageName,
			[URL] = @URL,
			[UpdatedAt] = SYSUTCDATETIME()
	WHEN NOT MATCHED THEN
		INSERT ([CheckSum], [Title], [Description], [Author], [Duration], [Rating], [Price], [ImageName], [Category], [Subcategory], [URL], [UpdatedAt])
		VALUES (@CheckSum, @Title, @Description, @Author, @Duration, @Rating, @Price, @ImageName, @Category, @Subcategory, @URL, SYSUTCDATETIME());
`

const upsertCategoryQuery = `
	MERGE INTO TblCategories AS target
	USING (SELECT @CheckSum AS CheckSum) AS source
	ON target.[CheckSum] = source.CheckSum
	WHEN NOT MATCHED THEN
		INSERT ([CheckSum], [Category], [Subcategory])
		VALUES (@CheckSum, @Category, @Subcategory);
`

// Repository зеркалирует наборы данных в SQL Server
type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	checksum       *checksum.Generator
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		checksum:       checksum.NewGenerator(),
		logger:         logger,
	}, nil
}

// SaveCourses upsert-ит курсы по checksum в одной транзакции
func (r *Repository) SaveCourses(ctx context.Context, courses []scraper.Course) error {
	return r.inTx(ctx, upsertCourseQuery, len(courses), func(ctx context.Context, stmt *sql.Stmt, i int) error {
		c := courses[i]
		_, err := stmt.ExecContext(ctx,
			sql.Named("CheckSum", r.checksum.CourseHash(c)),
			sql.Named("Title", c.Title),
			sql.Named("Description", c.Description),
			sql.Named("Author", c.Author),
			sql.Named("Duration", c.Duration),
			sql.Named("Rating", c.Rating),
			sql.Named("Price", c.Price),
			sql.Named("ImageName", c.ImageName),
			sql.Named("Category", c.Category),
			sql.Named("Subcategory", c.Subcategory),
			sql.Named("URL", c.URL),
		)
		return err
	})
}

// SaveCategories вставляет отсутствующие пары
func (r *Repository) SaveCategories(ctx context.Context, categories []scraper.CategoryPair) error {
	return r.inTx(ctx, upsertCategoryQuery, len(categories), func(ctx context.Context, stmt *sql.Stmt, i int) error {
		p := categories[i]
		_, err := stmt.ExecContext(ctx,
			sql.Named("CheckSum", r.checksum.CategoryHash(p)),
			sql.Named("Category", p.Category),
			sql.Named("Subcategory", p.Subcategory),
		)
		return err
	})
}

func (r *Repository) inTx(ctx context.Context, query string, n int, exec func(context.Context, *sql.Stmt, int) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback", "error", rbErr.Error())
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	for i := 0; i < n; i++ {
		cmdCtx, cancel := context.WithTimeout(ctx, r.commandTimeout)
		err = exec(cmdCtx, stmt, i)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to execute upsert: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	r.logger.Info("Rows mirrored to SQL Server", "rows", n)
	return nil
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
