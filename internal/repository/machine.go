package repository

import (
	"database/sql"

	"github.com/vendhub/vendhub/internal/domain"
	"github.com/vendhub/vendhub/pkg/vendhub/core"
)

// MachineRepository provides persistence methods for the machines table.
type MachineRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewMachineRepository(db *sql.DB, clock core.Clock) *MachineRepository {
	return &MachineRepository{db: db, clock: clock}
}

const machineColumns = ` id, code, name, location, active, created `

func (r *MachineRepository) Save(m *domain.Machine) (int64, error) {
	if m.Created.IsZero() {
		m.Created = r.clock.Now().UTC()
	}
	base := `
		INSERT INTO machines (code, name, location, active, created)
		VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `)`
	vals := []interface{}{m.Code, m.Name, m.Location, m.Active, formatDateInDatabase(m.Created)}

	var err error
	if supportsReturning() {
		err = r.db.QueryRow(base+" RETURNING id", vals...).Scan(&m.ID)
	} else {
		res, e := r.db.Exec(base, vals...)
		if e != nil {
			err = e
		} else {
			m.ID, err = res.LastInsertId()
		}
	}
	return m.ID, err
}

func (r *MachineRepository) scanOne(row *sql.Row) (*domain.Machine, error) {
	var m domain.Machine
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.Location, &m.Active, &m.Created)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MachineRepository) FindByID(id int64) (*domain.Machine, error) {
	query := `SELECT` + machineColumns + `FROM machines WHERE id = ` + placeholder(1)
	return r.scanOne(r.db.QueryRow(query, id))
}

func (r *MachineRepository) FindByCode(code string) (*domain.Machine, error) {
	query := `SELECT` + machineColumns + `FROM machines WHERE code = ` + placeholder(1)
	return r.scanOne(r.db.QueryRow(query, code))
}

func (r *MachineRepository) ExistsByCode(code string) (bool, error) {
	query := `SELECT COUNT(1) FROM machines WHERE code = ` + placeholder(1) + ` AND active = ` + placeholder(2)
	var count int
	if err := r.db.QueryRow(query, code, true).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MachineRepository) FindAll() ([]*domain.Machine, error) {
	query := `SELECT` + machineColumns + `FROM machines ORDER BY code`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var machines []*domain.Machine
	for rows.Next() {
		var m domain.Machine
		if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.Location, &m.Active, &m.Created); err != nil {
			return nil, err
		}
		machines = append(machines, &m)
	}
	return machines, rows.Err()
}

func (r *MachineRepository) SetActive(id int64, active bool) error {
	query := `UPDATE machines SET active = ` + placeholder(1) + ` WHERE id = ` + placeholder(2)
	_, err := r.db.Exec(query, active, id)
	return err
}
