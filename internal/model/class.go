package model

// 피드에 CLASSE 값이 없을 때 사용하는 분류
const PlaceholderClass = "N/A"

var fallbackClassList = []string{"Renda Fixa", "Ações", "Multimercado", "Cambial"}

func FallbackClassList() []string {
	return fallbackClassList
}
