package logging

import (
	"encoding/json"
	"testing"

	"go.viam.com/test"
)

func TestLevelStrings(t *testing.T) {
	for _, level := range []Level{DEBUG, INFO, WARN, ERROR} {
		serialized := level.String()
		parsed, err := LevelFromString(serialized)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, level)
	}

	parsed, err := LevelFromString("warning")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, parsed, test.ShouldEqual, WARN)
}

func TestLevelFromStringRejectsUnknown(t *testing.T) {
	_, err := LevelFromString("not a level")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestJSONRoundTrip(t *testing.T) {
	type AllLevelStruct struct {
		Debug Level
		Info  Level
		Warn  Level
		Error Level
	}

	levels := AllLevelStruct{DEBUG, INFO, WARN, ERROR}

	serialized, err := json.Marshal(levels)
	test.That(t, err, test.ShouldBeNil)

	var parsed AllLevelStruct
	test.That(t, json.Unmarshal(serialized, &parsed), test.ShouldBeNil)
	test.That(t, levels, test.ShouldResemble, parsed)
}

func TestJSONErrors(t *testing.T) {
	var level Level
	err := json.Unmarshal([]byte(`{}`), &level)
	test.That(t, err, test.ShouldNotBeNil)
	err = json.Unmarshal([]byte(`"not a level"`), &level)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewLoggerDefaultsToStdout(t *testing.T) {
	logger := NewLogger(INFO)
	test.That(t, logger, test.ShouldNotBeNil)
	logger.Infof("hello %s", "world")
}

func TestNewTestLoggerSuppressesBelowError(t *testing.T) {
	logger := NewTestLogger()
	logger.Debugf("should not print")
	logger.Infof("should not print")
}
