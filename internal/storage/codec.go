package storage

import (
	"encoding/json"
	"errors"

	"greenwave/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(run model.RunRecord) ([]byte, error) {
	run.VersionedRecord = currentVersion()
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeHistory(history model.RunHistory) ([]byte, error) {
	history.VersionedRecord = currentVersion()
	return json.Marshal(history)
}

func DecodeHistory(data []byte) (model.RunHistory, error) {
	var history model.RunHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return model.RunHistory{}, err
	}
	if err := checkVersion(history.VersionedRecord); err != nil {
		return model.RunHistory{}, err
	}
	return history, nil
}

func currentVersion() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
