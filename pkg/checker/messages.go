package checker

// Diagnostic messages.
const (
	MsgMissingInicio     = "o programa não possui a função 'inicio'"
	MsgUndeclaredVar     = "a variável '%s' não foi declarada"
	MsgRedeclaredVar     = "a variável '%s' já foi declarada neste escopo"
	MsgRedeclaredFunc    = "a função '%s' já foi declarada"
	MsgUndeclaredFunc    = "a função '%s' não foi declarada"
	MsgArgCount          = "a função '%s' espera %d argumento(s), mas recebeu %d"
	MsgArgType           = "o argumento %d da função '%s' deve ser do tipo %s, mas é do tipo %s"
	MsgConstAssign       = "não é possível alterar o valor da constante '%s'"
	MsgConstNoInit       = "a constante '%s' deve ser inicializada"
	MsgVoidVar           = "a variável '%s' não pode ser do tipo vazio"
	MsgAssignType        = "não é possível atribuir um valor do tipo %s a '%s', que é do tipo %s"
	MsgCondition         = "a condição deve ser do tipo logico, mas é do tipo %s"
	MsgOperand           = "o operador '%s' não pode ser aplicado ao tipo %s"
	MsgOperands          = "o operador '%s' não pode ser aplicado aos tipos %s e %s"
	MsgBreakOutsideLoop  = "o comando 'pare' só pode ser usado dentro de um laço"
	MsgReturnInVoid      = "a função '%s' é do tipo vazio e não pode retornar um valor"
	MsgReturnMissing     = "a função '%s' deve retornar um valor do tipo %s"
	MsgReturnType        = "a função '%s' deve retornar um valor do tipo %s, mas retorna %s"
	MsgVoidValue         = "a função '%s' não retorna um valor"
	MsgReadArgument      = "a função 'leia' só aceita variáveis como argumentos"
	MsgBuiltinRedeclared = "'%s' é uma função da biblioteca e não pode ser redeclarada"
	MsgDidYouMean        = " (você quis dizer '%s'?)"
)
