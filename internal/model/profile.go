package model

import (
	"errors"
	"slices"
)

type RiskProfile string

const (
	Conservador RiskProfile = "conservador"
	Moderado    RiskProfile = "moderado"
	Arrojado    RiskProfile = "arrojado"
)

var riskProfileList = []RiskProfile{Conservador, Moderado, Arrojado}

func (r RiskProfile) String() string {
	return string(r)
}

func ToRiskProfile(s string) (RiskProfile, error) {
	r := RiskProfile(s)
	if slices.Contains(riskProfileList, r) {
		return r, nil
	}
	return "", errors.New("존재하지 않는 투자 성향. 입력 값 :" + s)
}

func IsValidRiskProfile(s string) bool {
	return slices.Contains(riskProfileList, RiskProfile(s))
}

func RiskProfileList() []string {
	rtn := make([]string, len(riskProfileList))
	for i, r := range riskProfileList {
		rtn[i] = r.String()
	}
	return rtn
}
