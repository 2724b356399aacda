package config

import (
	"testing"

	"github.com/flintstat/ccdfit/internal/resample"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("Defaults().Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsUnknownModel(t *testing.T) {
	a := Defaults()
	a.ModelName = "not-a-model"
	if err := a.Validate(); err == nil {
		t.Fatal("expected an error for an unknown model name")
	}
}

func TestValidateRejectsInvertedCVRange(t *testing.T) {
	a := Defaults()
	a.DoCrossValidation = true
	a.Lower, a.Upper = 10, 1
	if err := a.Validate(); err == nil {
		t.Fatal("expected an error for lower > upper")
	}
}

func TestValidateRejectsMLEAtModeWithoutPriorFirstFit(t *testing.T) {
	a := Defaults()
	a.Hyperprior = 0
	a.FitMLEAtMode = true
	if err := a.Validate(); err == nil {
		t.Fatal("expected an error for fitMLEAtMode without a prior-first fit")
	}
}

func TestValidateRejectsComputeMLEWithFitMLEAtMode(t *testing.T) {
	a := Defaults()
	a.ComputeMLE = true
	a.FitMLEAtMode = true
	if err := a.Validate(); err == nil {
		t.Fatal("expected an error for computeMLE combined with fitMLEAtMode: the mode is not first explored")
	}
}

func TestResampleLevelBySubjectForStratifiedModels(t *testing.T) {
	if ResampleLevel("cox") != resample.LevelSubject {
		t.Fatal("cox should resample at subject level")
	}
	if ResampleLevel("lr") != resample.LevelEntry {
		t.Fatal("lr should resample at entry level")
	}
}
