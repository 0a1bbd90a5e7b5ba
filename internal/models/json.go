package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a raw JSON document on top of datatypes.JSON: jsonb on Postgres,
// text on SQLite. Setting values are often bare scalars, which SQLite would
// coerce to numbers in a JSON-affinity column.
type JSON datatypes.JSON

// MustJSON marshals v, panicking on unsupported values.
func MustJSON(v any) JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("models: marshal json: %v", err))
	}
	return JSON(b)
}

func (j JSON) Value() (driver.Value, error) {
	return datatypes.JSON(j).Value()
}

// Scan accepts numeric and boolean driver values besides text, for rows
// written before the SQLite column became text.
func (j *JSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
		return nil
	case int64, float64, bool:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		*j = JSON(b)
		return nil
	}
	return (*datatypes.JSON)(j).Scan(src)
}

func (JSON) GormDataType() string {
	return datatypes.JSON{}.GormDataType()
}

func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return datatypes.JSON{}.GormDBDataType(db, field)
}

func (j JSON) MarshalJSON() ([]byte, error) {
	return datatypes.JSON(j).MarshalJSON()
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	return (*datatypes.JSON)(j).UnmarshalJSON(data)
}

// Decode unmarshals j into v.
func (j JSON) Decode(v any) error {
	return json.Unmarshal(j, v)
}

// Equal compares two documents byte-wise after trimming whitespace.
func (j JSON) Equal(other JSON) bool {
	return bytes.Equal(bytes.TrimSpace(j), bytes.TrimSpace(other))
}
