package config

func MailSMTPAddr() string {
	return GetEnv("MAIL_SMTP_ADDR", "localhost:2525")
}

func MailUsername() string {
	return GetEnv("MAIL_USERNAME", "")
}

func MailPassword() string {
	return GetEnv("MAIL_PASSWORD", "")
}

func MailDomain() string {
	return GetEnv("MAIL_DOMAIN", "localhost")
}

func MailFrom() string {
	return GetEnv("MAIL_FROM", "noreply@"+MailDomain())
}

func MailDKIMSelector() string {
	return GetEnv("MAIL_DKIM_SELECTOR", "signup")
}

// MailDKIMKeyFile is an optional PKCS#8 PEM key used to DKIM-sign outbound mail.
func MailDKIMKeyFile() string {
	return GetEnv("MAIL_DKIM_KEY_FILE", "")
}

// MailSinkAddr enables the development SMTP sink when non-empty.
func MailSinkAddr() string {
	return GetEnv("MAIL_SINK_ADDR", "")
}

func MailSinkCheckSPF() bool {
	return GetBool("MAIL_SINK_CHECK_SPF", false)
}

func MailMaxMessageBytes() int64 {
	n, err := parseBytes(GetEnv("MAIL_MAX_MESSAGE_BYTES", "256KB"))
	if err != nil || n <= 0 {
		return 256 << 10
	}
	return n
}
