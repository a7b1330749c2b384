package prompt

// instructions maps each recognized persona to its system instruction.
var instructions = map[Persona]string{
	CareerAdvisor:    careerAdvisorSystem,
	FinancialPlanner: financialPlannerSystem,
}

// Instruction returns the system instruction for p. Unrecognized personas get
// the generic expert instruction, so the result is never empty.
func Instruction(p Persona) string {
	if s, ok := instructions[p]; ok {
		return s
	}
	return fallbackSystem
}

// careerAdvisorSystem is the system prompt for CareerAdvisor.
const careerAdvisorSystem = "あなたはIT業界および生成AI領域に詳しいキャリアアドバイザーです。" +
	"質問者の経験レベルを踏まえつつ、日本語で丁寧に、" +
	"具体的なステップや実行しやすいアドバイスを中心に回答してください。"

// financialPlannerSystem is the system prompt for FinancialPlanner.
const financialPlannerSystem = "あなたは日本の税制や社会保険制度に詳しいファイナンシャルプランナーです。" +
	"家計や将来のライフプランに関する相談に対して、日本語で分かりやすく説明し、" +
	"可能であれば数字の目安や具体例も交えながらアドバイスしてください。"

// fallbackSystem is used for any persona outside the recognized set.
const fallbackSystem = "あなたは質問されたトピックについて、初心者にも分かりやすく説明する日本語の専門家です。"
