package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shareit/internal/apperror"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

const tableUsers = "users"

var userColumns = []interface{}{"id", "name", "email"}

func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := db.get(ctx, &user, db.from(tableUsers).Select(userColumns...).Where(goqu.C("id").Eq(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("User with id %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (db *DB) UserExists(ctx context.Context, id int64) (bool, error) {
	return db.exists(ctx, tableUsers, id)
}

func (db *DB) ListUsers(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0)
	if err := db.selectAll(ctx, &users, db.from(tableUsers).Select(userColumns...).Order(goqu.C("id").Asc())); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableUsers).Rows(goqu.Record{
		"name":  user.Name,
		"email": user.Email,
	}))
	if isUniqueViolation(err) {
		return apperror.Conflict("User with email %s already exists", user.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	rows, err := db.exec(ctx, db.dialect.Update(tableUsers).Prepared(true).
		Set(goqu.Record{"name": user.Name, "email": user.Email}).
		Where(goqu.C("id").Eq(user.ID)))
	if isUniqueViolation(err) {
		return apperror.Conflict("User with email %s already exists", user.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("User with id %d not found", user.ID)
	}
	return nil
}

func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	rows, err := db.exec(ctx, db.dialect.Delete(tableUsers).Prepared(true).Where(goqu.C("id").Eq(id)))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("User with id %d not found", id)
	}
	return nil
}
