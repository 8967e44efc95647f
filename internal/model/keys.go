package model

// PrivateInputsKey is the reactor-context key under which the executor
// stores the reactor's input map. It is "private" in the sense that step
// implementations never set it directly; InputRef templates are the only
// sanctioned way to read from it.
const PrivateInputsKey = "__reactor_inputs__"
