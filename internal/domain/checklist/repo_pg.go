package checklist

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/preop/preop/internal/platform/db"
	"github.com/preop/preop/internal/platform/search"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `id, hn, patient_name, age, ward, bed, diagnosis, operation, operation_date,
	rows, consent, npo, lab, valuables, iv_fluid, medication, result,
	created_by, created_at, updated_at`

func (r *repoPG) scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.HN, &rec.PatientName, &rec.Age, &rec.Ward, &rec.Bed,
		&rec.Diagnosis, &rec.Operation, &rec.OperationDate,
		&rec.Rows, &rec.Consent, &rec.NPO, &rec.Lab, &rec.Valuables, &rec.IVFluid, &rec.Medication, &rec.Result,
		&rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt)
	return &rec, err
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO preop_checklist (id, hn, patient_name, age, ward, bed, diagnosis, operation, operation_date,
			rows, consent, npo, lab, valuables, iv_fluid, medication, result, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		rec.ID, rec.HN, rec.PatientName, rec.Age, rec.Ward, rec.Bed, rec.Diagnosis, rec.Operation, rec.OperationDate,
		rec.Rows, rec.Consent, rec.NPO, rec.Lab, rec.Valuables, rec.IVFluid, rec.Medication, rec.Result, rec.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return r.scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM preop_checklist WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE preop_checklist SET hn=$2, patient_name=$3, age=$4, ward=$5, bed=$6, diagnosis=$7,
			operation=$8, operation_date=$9,
			rows=$10, consent=$11, npo=$12, lab=$13, valuables=$14, iv_fluid=$15, medication=$16, result=$17,
			updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.HN, rec.PatientName, rec.Age, rec.Ward, rec.Bed, rec.Diagnosis,
		rec.Operation, rec.OperationDate,
		rec.Rows, rec.Consent, rec.NPO, rec.Lab, rec.Valuables, rec.IVFluid, rec.Medication, rec.Result)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM preop_checklist WHERE id = $1`, id)
	return err
}

const digestCols = `id, hn, patient_name, ward, bed, operation, operation_date, updated_at,
	rows, consent, npo, lab, result`

func scanDigest(row pgx.Row) (*Digest, error) {
	var d Digest
	err := row.Scan(&d.ID, &d.HN, &d.PatientName, &d.Ward, &d.Bed, &d.Operation, &d.OperationDate, &d.UpdatedAt,
		&d.RowsJSON, &d.ConsentJSON, &d.NPOJSON, &d.LabJSON, &d.ResultJSON)
	return &d, err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Digest, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM preop_checklist`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+digestCols+` FROM preop_checklist ORDER BY operation_date DESC NULLS LAST, updated_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Digest
	for rows.Next() {
		d, err := scanDigest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}

var recordSearchParams = map[string]search.ParamConfig{
	"hn":      {Type: search.ParamToken, Column: "hn"},
	"patient": {Type: search.ParamString, Column: "patient_name"},
	"ward":    {Type: search.ParamToken, Column: "ward"},
	"date":    {Type: search.ParamDate, Column: "operation_date"},
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, sort string, limit, offset int) ([]*Digest, int, error) {
	qb := search.NewQuery("preop_checklist", digestCols)
	qb.ApplyParams(params, recordSearchParams)
	qb.ApplySort(sort, "operation_date DESC NULLS LAST, updated_at DESC", recordSearchParams)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Digest
	for rows.Next() {
		d, err := scanDigest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, nil
}
