package chat

import "strings"

const (
	answerOriginalSin = "O pecado original refere-se à doutrina cristã sobre a natureza caída da humanidade após a desobediência de Adão e Eva no Jardim do Éden (Gênesis 3). Esta doutrina ensina que todos os seres humanos nascem em estado de pecado herdado dessa primeira transgressão.\n\n" +
		"Passagens bíblicas relevantes incluem:\n\n" +
		"- **Romanos 5:12**: \"Portanto, assim como por um só homem entrou o pecado no mundo, e pelo pecado, a morte, assim também a morte passou a todos os homens, porque todos pecaram.\"\n\n" +
		"- **Salmos 51:5**: \"Eis que em iniquidade fui formado, e em pecado me concebeu minha mãe.\"\n\n" +
		"Teólogos como Agostinho de Hipona desenvolveram esta doutrina, ensinando que o pecado original afeta toda a humanidade e cria uma separação de Deus que só pode ser restaurada através de Cristo."

	answerSurprise = "**Você sabia?** 🌟\n\n" +
		"Jesus mencionou o profeta Jonas como um sinal profético de Sua própria morte e ressurreição. Em Mateus 12:39-40, Jesus disse: \"Uma geração má e adúltera pede um sinal miraculoso! Mas nenhum sinal lhe será dado, exceto o sinal do profeta Jonas. Pois assim como Jonas esteve três dias e três noites no ventre de um grande peixe, assim o Filho do homem ficará três dias e três noites no coração da terra.\"\n\n" +
		"Esta fascinante conexão entre o Antigo e o Novo Testamento mostra como a história de Jonas serviu como uma prefigura profética da morte, sepultamento e ressurreição de Jesus!"

	answerLoveVerses = "**Versículos sobre amor:**\n\n" +
		"- \"Porque Deus amou o mundo de tal maneira que deu o seu Filho unigênito, para que todo aquele que nele crê não pereça, mas tenha a vida eterna.\" (João 3:16)\n\n" +
		"- \"O amor é paciente, o amor é bondoso. Não inveja, não se vangloria, não se orgulha. Não maltrata, não procura seus interesses, não se ira facilmente, não guarda rancor.\" (1 Coríntios 13:4-5)\n\n" +
		"- \"Amados, amemos uns aos outros, pois o amor procede de Deus. Aquele que ama é nascido de Deus e conhece a Deus. Quem não ama não conhece a Deus, porque Deus é amor.\" (1 João 4:7-8)\n\n" +
		"- \"Acima de tudo, porém, revistam-se do amor, que é o elo perfeito.\" (Colossenses 3:14)"

	answerGeneric = "Baseado nas Escrituras, posso dizer que esta é uma pergunta importante para reflexão. A Bíblia nos convida a buscar sabedoria através da oração e do estudo da Palavra.\n\n" +
		"Talvez possamos explorar isso mais profundamente. Você gostaria de especificar alguma passagem bíblica para discutirmos?"
)

// SurpriseQuestion is sent by the "Me surpreenda" shortcut.
const SurpriseQuestion = "Me surpreenda com uma curiosidade bíblica"

type canned struct {
	phrases []string
	answer  string
}

var cannedAnswers = []canned{ //nolint:gochecknoglobals
	{phrases: []string{"pecado original"}, answer: answerOriginalSin},
	{phrases: []string{"me surpreenda", "surpreender"}, answer: answerSurprise},
	{phrases: []string{"só versículos", "apenas versículos"}, answer: answerLoveVerses},
}

// Fallback returns the canned answer matching the question, or a generic reply.
func Fallback(question string) string {
	q := strings.ToLower(question)

	for _, c := range cannedAnswers {
		for _, p := range c.phrases {
			if strings.Contains(q, p) {
				return c.answer
			}
		}
	}

	return answerGeneric
}
