package chat

const (
	msgGreeting = "👋 Oi! Eu sou sua secretária pessoal!\n\n" +
		"Eu guardo suas tarefas, fico de olho nas suas finanças e te lembro do que importa.\n\n" +
		"📌 /tarefa — adicionar uma tarefa\n" +
		"📋 /lista — ver suas tarefas\n" +
		"✅ /feito — marcar tarefa como concluída\n" +
		"💰 /saldo — ver seu saldo\n" +
		"🧾 /extrato — últimos lançamentos\n\n" +
		"Fora isso, pode falar comigo do jeito que quiser!"

	msgAskInitialBalance = "Antes de começar: *quanto você tem na conta hoje?*\n(Pode mandar só o número, ex: 1500.00)"

	msgAskFinancialGoal = "Anotei! 📝\n\nAgora me conta: *qual é sua meta financeira?*\n(Quanto você quer ter guardado? Só o número.)"

	msgOnboardingDone = "Perfeito! 🎯 Tudo anotado.\n\nAgora é só me contar seus gastos e ganhos que eu cuido do resto."

	msgReprompNumber = "Não consegui achar um número aí 😅\nMe manda só o valor, ex: 1500.00"

	msgTaskUsage = "Me fala a tarefa! Ex: /tarefa Ligar pro cliente"

	msgDoneUsage = "Me fala o número da tarefa! Ex: /feito 1"

	msgTaskNotFound = "Não achei nenhuma tarefa pendente com esse número. Use /lista pra conferir."

	msgNoTasks = "Você não tem tarefas pendentes! Use /tarefa para adicionar."

	msgMorning = "☀️ *Bom dia!*\n\nNovo dia, nova chance.\n\n" +
		"👉 Me fala: *qual é a UMA coisa mais importante que você precisa fazer hoje?*\n\n" +
		"_(Só uma. O resto é bônus.)_"

	msgCheckinAllClear = "🌤 Passando só pra dizer: nenhuma tarefa pendente. Aproveita o dia!"

	msgEncouragement = "Boa! 💪 Continua assim — qualquer coisa eu tô aqui."

	msgSomethingWrong = "Ops, algo deu errado aqui do meu lado. Tenta de novo?"
)
