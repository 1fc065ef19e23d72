package uart

// Device is the register-level boundary of a USART controller.
type Device interface {
	// Configure writes the control and baud rate registers.
	Configure(Registers) error
	// Status reads the status register.
	Status() Status
	// WriteData loads the transmit data register.
	WriteData(byte)
	// ReadData reads the receive data register and clears RXC
	// and the fault flags latched with the byte.
	ReadData() byte
	// Err reports a sticky failure of the underlying medium.
	Err() error
}
