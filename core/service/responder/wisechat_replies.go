package responder

// Reply catalogue. Every entry is non-empty.

var crisisReplies = []string{
	"Lo que me cuentas es muy importante y no tienes por qué pasarlo a solas. " +
		"Si estás en peligro, llama ahora a la línea de emergencia 123 o acude a los servicios de emergencia más cercanos. " +
		"También te pido que busques a una persona de confianza y le cuentes cómo te sientes.",
	"Siento mucho que estés pasando por esto. Tu seguridad es lo primero: " +
		"comunícate con la línea de emergencia 123 o con los servicios de emergencia de tu zona. " +
		"Habla hoy mismo con alguien de confianza que pueda acompañarte.",
}

const greetingReply = "¡Hola! Soy WiseChat, un asistente que te acompaña a poner en palabras lo que sientes. " +
	"Cuéntame, ¿cómo estás hoy?"

var helpReplies = []string{
	"Estoy aquí para ayudarte. Cuéntame un poco más de lo que está pasando para entenderlo mejor.",
	"Claro que sí. Vamos paso a paso: ¿qué es lo que más te preocupa en este momento?",
}

var distressReplies = []string{
	"Lamento que te sientas así. Lo que sientes es válido. ¿Quieres contarme qué ha pasado?",
	"Gracias por confiarme cómo te sientes. A veces ayuda nombrar lo que nos pesa. ¿Desde cuándo te sientes así?",
	"Parece un momento difícil. Respira despacio un instante; estoy aquí para escucharte.",
}

var relationshipReplies = []string{
	"Los conflictos con las personas que queremos duelen mucho. ¿Qué fue lo que ocurrió?",
	"Las relaciones pueden ser complicadas. Cuéntame cómo te sientes tú con lo que pasó.",
}

var positiveReplies = []string{
	"¡Qué bueno leer eso! Me alegra que te sientas así. ¿Qué ha hecho que tu día vaya bien?",
	"¡Me encanta escucharlo! Me alegra mucho que estés así; disfruta ese momento.",
}

const feelingReply = "Es una muy buena pregunta. Intenta describir qué pasó justo antes de sentirte así " +
	"y qué notas en tu cuerpo; juntos podemos ponerle nombre."

var shortReplies = []string{
	"Te leo. Si quieres, cuéntame un poco más.",
	"Entiendo. ¿Hay algo más que quieras compartir?",
}

var gratitudeReplies = []string{
	"¡Gracias a ti por compartir! Aquí estaré cuando quieras hablar.",
	"Con mucho gusto. Recuerda que puedes escribirme cuando lo necesites.",
}

var defaultPositiveReplies = []string{
	"Se nota una buena energía en tu mensaje. ¿Quieres contarme más?",
}

var defaultNegativeReplies = []string{
	"Siento que algo no va bien. Estoy aquí para escucharte, sin prisa.",
	"Parece que cargas con algo pesado. ¿Quieres hablar de ello?",
}

var defaultNeutralReplies = []string{
	"Te escucho. ¿Cómo te hace sentir eso?",
	"Cuéntame más, me interesa saber cómo estás.",
}
