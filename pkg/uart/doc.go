// Package uart provides the serial transport of the ECU link.
package uart

// The link is an asynchronous serial line between exactly two nodes.
// Every byte is shaped by a FrameConfig (data bits, parity, stop bits,
// baud rate) which is encoded once into the register values of an
// ATmega-style USART and stays fixed for the lifetime of a Channel.
//
// A Channel owns one Device. SendByte and ReceiveByte poll the device
// status register the same way firmware busy-waits on UDRE and RXC,
// except that the wait is always bounded by a context.
